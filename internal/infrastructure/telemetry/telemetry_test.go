package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	tp, shutdown, err := Setup(context.Background(), Config{Enabled: false, Endpoint: "localhost:4318"})
	require.NoError(t, err)
	assert.IsType(t, noop.TracerProvider{}, tp)
	assert.NoError(t, shutdown(context.Background()))

	tp, _, err = Setup(context.Background(), Config{Enabled: true})
	require.NoError(t, err)
	assert.IsType(t, noop.TracerProvider{}, tp, "no endpoint means no exporter")
}

func TestNewProvider_TagsService(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := NewProvider(sdktrace.WithSpanProcessor(rec), Config{ServiceName: "school-records", ServiceVersion: "1.2.3"})
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	attrs := map[string]string{}
	for _, kv := range spans[0].Resource().Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "school-records", attrs["service.name"])
	assert.Equal(t, "1.2.3", attrs["service.version"])
}
