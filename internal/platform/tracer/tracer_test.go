package tracer

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracer_WithoutEndpoint(t *testing.T) {
	tp := InitTracer("marketplace-test", "", logger.NewNop())
	require.NotNil(t, tp)
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}
