package handler

import (
	"lodge/config"
	"lodge/di"
	"lodge/shared/logger"
	lodgeHTTP "lodge/transport/http"
	"net/http"
	"sync"
)

var (
	server *lodgeHTTP.HTTP
	once   sync.Once
)

// Handler is the serverless entrypoint. The service graph is built once per instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		server = di.InitializeService()
	})

	server.ServeHTTP(w, r)
}
