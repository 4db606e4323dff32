package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	context_ "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/infra/logging"
)

//nolint:paralleltest
func TestGetLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	logging.Configure(context.Background(), logging.LoggerConfig{
		Level:        "debug",
		JSON:         true,
		OutputHandle: &buf,
	}, "storefront")

	ctx := context_.WithTraceID(context.Background(), "trace-1")
	ctx = context_.WithUserID(ctx, 7)

	buf.Reset()
	logging.GetLogger("svc.ordersvc").InfoContext(ctx, "checkout done", "order_no", "abc")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "checkout done", record["msg"])
	assert.Equal(t, "storefront", record["app"])
	assert.Equal(t, "svc.ordersvc", record[logging.LoggerNameKey])
	assert.Equal(t, "abc", record["order_no"])
	assert.Equal(t, map[string]any{"id": "trace-1"}, record["trace"])
	assert.Equal(t, map[string]any{"user_id": float64(7)}, record["auth"])
}

//nolint:paralleltest
func TestGetLogger_SpanIDs(t *testing.T) {
	var buf bytes.Buffer

	logging.Configure(context.Background(), logging.LoggerConfig{
		Level:        "info",
		JSON:         true,
		OutputHandle: &buf,
	}, "storefront")

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "checkout")
	defer span.End()

	buf.Reset()
	logging.GetLogger("svc.ordersvc").InfoContext(ctx, "inside span")
	logging.GetLogger("svc.ordersvc").Info("outside span")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var inside, outside map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &inside))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &outside))

	assert.Equal(t, map[string]any{
		"trace_id": span.SpanContext().TraceID().String(),
		"span_id":  span.SpanContext().SpanID().String(),
	}, inside["span"])
	assert.NotContains(t, outside, "span")
}

//nolint:paralleltest
func TestConsoleHandler_PackageFilter(t *testing.T) {
	var buf bytes.Buffer

	logging.Configure(context.Background(), logging.LoggerConfig{
		Level:        "debug",
		Filter:       "repo:warn",
		OutputHandle: &buf,
	}, "storefront")

	buf.Reset()
	logging.GetLogger("repo.sqldb").Info("suppressed by filter")
	logging.GetLogger("repo.sqldb").Warn("kept by filter")
	logging.GetLogger("svc.cartsvc").Debug("kept without filter")

	out := buf.String()

	assert.NotContains(t, out, "suppressed by filter")
	assert.Contains(t, out, "kept by filter")
	assert.Contains(t, out, "kept without filter")
	assert.Equal(t, 2, strings.Count(out, "\n-> "))
}

//nolint:paralleltest
func TestGetLogger_Discard(t *testing.T) {
	logging.Configure(context.Background(), logging.LoggerConfig{Output: "discard"}, "storefront")

	logger := logging.GetLogger("anything")
	require.NotNil(t, logger)

	logger.Error("goes nowhere")
}
