package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestServer_request_span_records_handler_error(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(recorder)))
	defer otel.SetTracerProvider(previous)

	server := newTestServer(t)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tickets", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, notAuthorizedBody, rec.Body.String())

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	errAttr, ok := lo.Find(spans[0].Attributes(), func(kv attribute.KeyValue) bool {
		return kv.Key == "echo.error"
	})
	require.True(t, ok, "span has no echo.error attribute")
	assert.Equal(t, "Not authorized", errAttr.Value.AsString())
}
