package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()

	require.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestRequestID_Missing(t *testing.T) {
	assert.Equal(t, NoRequestID, RequestID(context.Background()))
}

func TestWithRequestID_EmptyIsNoop(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	assert.Equal(t, NoRequestID, RequestID(ctx))
}
