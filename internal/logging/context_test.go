package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

func TestNewRequestIDIsUnique(t *testing.T) {
	ctx1 := WithNewRequestID(context.Background())
	ctx2 := WithNewRequestID(context.Background())
	assert.NotEqual(t, GetRequestID(ctx1), GetRequestID(ctx2))
}

func TestMessageIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetMessageID(ctx))

	ctx = WithMessageID(ctx, "msg-456")
	assert.Equal(t, "msg-456", GetMessageID(ctx))
	assert.Empty(t, GetMessageID(context.Background()))
}

func TestSessionIDContext(t *testing.T) {
	ctx := WithSessionID(context.Background(), "sess-1")
	assert.Equal(t, "sess-1", GetSessionID(ctx))
}

func TestCorrelationIDContext(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "corr-1")
	assert.Equal(t, "corr-1", GetCorrelationID(ctx))
}

func TestEnrichContext(t *testing.T) {
	ctx := EnrichContext(context.Background(),
		func(c context.Context) context.Context { return WithRequestID(c, "req-1") },
		func(c context.Context) context.Context { return WithSessionID(c, "sess-1") },
	)

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "sess-1", GetSessionID(ctx))
}
