package otel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorded() (Otel, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()

	return &otelImpl{TracerProvider: trace.NewTracerProvider(trace.WithSpanProcessor(recorder))}, recorder
}

func TestScope_Attributes(t *testing.T) {
	ot, recorder := newRecorded()

	_, scope := ot.NewScope(context.Background(), "service", "service.Create")
	scope.SetAttributes(map[string]any{
		"booking.unit_id": "1",
		"booking.id":      int64(7),
		"booking.nights":  3,
		"lock.held":       true,
		"check_in":        time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
	})
	scope.SetAttribute("other", struct{ N int }{N: 1})
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "service.Create", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}

	assert.Equal(t, "1", attrs["booking.unit_id"].AsString())
	assert.Equal(t, int64(7), attrs["booking.id"].AsInt64())
	assert.Equal(t, int64(3), attrs["booking.nights"].AsInt64())
	assert.True(t, attrs["lock.held"].AsBool())
	assert.Equal(t, "2026-10-16T00:00:00Z", attrs["check_in"].AsString())
	assert.Equal(t, "{1}", attrs["other"].AsString())
}

func TestScope_TraceIfError(t *testing.T) {
	ot, recorder := newRecorded()

	_, ok := ot.NewScope(context.Background(), "service", "ok")
	ok.TraceIfError(nil)
	ok.End()

	_, failed := ot.NewScope(context.Background(), "service", "failed")
	failed.TraceIfError(errors.New("unit occupied for requested dates"))
	failed.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "unit occupied for requested dates", spans[1].Status().Description)
	assert.Len(t, spans[1].Events(), 1)
}

func TestOtel_ShutdownWithoutExporter(t *testing.T) {
	ot, _ := newRecorded()

	assert.NoError(t, ot.Shutdown(context.Background()))
}
