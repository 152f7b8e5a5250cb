package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/giovaniif/items/infra/requestid"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), "items", "  ")
	require.NoError(t, err)
	assert.Nil(t, shutdown)
}

func TestWithRequestID(t *testing.T) {
	id := "0123456789abcdef0123456789abcdef"
	sc := trace.SpanContextFromContext(withRequestID(context.Background(), id))
	require.True(t, sc.IsValid())
	assert.Equal(t, id, sc.TraceID().String())
	assert.Equal(t, "0123456789abcdef", sc.SpanID().String())
	assert.True(t, sc.IsRemote())

	sc = trace.SpanContextFromContext(withRequestID(context.Background(), "short"))
	assert.False(t, sc.IsValid())
}

func TestStartAndFinish(t *testing.T) {
	recorder := recordSpans(t)

	_, span := Start(context.Background(), "create", "foo")
	Finish(span, errors.New("boom"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "items.create", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestMiddlewareUsesRequestID(t *testing.T) {
	recorder := recordSpans(t)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(requestid.Middleware(), Middleware())
	r.GET("/items/:item_id", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	id := "0123456789abcdef0123456789abcdef"
	req := httptest.NewRequest(http.MethodGet, "/items/foo", nil)
	req.Header.Set(requestid.Header, id)
	r.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /items/:item_id", spans[0].Name())
	assert.Equal(t, id, spans[0].SpanContext().TraceID().String())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
