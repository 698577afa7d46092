package response

import (
	"encoding/json"
	"lodge/shared/constant"
	"lodge/shared/failure"
	"lodge/shared/logger"
	"net/http"
)

// Data is the success envelope.
type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

// Error is the failure envelope. Only failure.Failure messages reach the client.
type Error struct {
	Error *string `json:"error,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

func WithMessage(writer http.ResponseWriter, code int, message string) {
	write(writer, code, Message{Message: &message})
}

func WithJSON[T any](writer http.ResponseWriter, code int, payload T) {
	write(writer, code, Data[T]{Data: &payload})
}

// WithError maps err to its status code. Anything that is not a failure.Failure is
// reported as an opaque internal error.
func WithError(writer http.ResponseWriter, err error) {
	msg := constant.ResponseErrorInternal
	if failure.IsFailure(err) {
		msg = err.Error()
	}

	write(writer, failure.GetCode(err), Error{Error: &msg})
}

func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// write marshals before touching the writer so an encoding failure never leaves a half-sent response.
func write(writer http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		http.Error(writer, constant.ResponseErrorInternal, http.StatusInternalServerError)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err := writer.Write(body); err != nil {
		logger.ErrorWithStack(err)
	}
}
