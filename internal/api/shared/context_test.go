package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		ctx := SetTraceID(context.Background())

		traceID := GetTraceID(ctx)
		require.NotEmpty(t, traceID)
		assert.Len(t, traceID, TraceIDLength*2, "trace id should be hex-encoded")
	})

	t.Run("absent trace id yields empty string", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
	})

	t.Run("ids are unique per context", func(t *testing.T) {
		first := GetTraceID(SetTraceID(context.Background()))
		second := GetTraceID(SetTraceID(context.Background()))
		assert.NotEqual(t, first, second)
	})
}

func TestUserIDContext(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		userID := uuid.New()
		ctx := SetUserID(context.Background(), userID)

		got, ok := GetUserID(ctx)
		require.True(t, ok)
		assert.Equal(t, userID, got)
	})

	t.Run("absent user id reports not found", func(t *testing.T) {
		got, ok := GetUserID(context.Background())
		assert.False(t, ok)
		assert.Equal(t, uuid.Nil, got)
	})
}

func TestGenerateFallbackTraceID(t *testing.T) {
	first := generateFallbackTraceID()
	assert.Len(t, first, TraceIDLength*2)
}
