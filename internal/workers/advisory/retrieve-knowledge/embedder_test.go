package retrieveknowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisory-workers/internal/common/database"
	"advisory-workers/internal/common/logger"
)

func embeddingKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + model + ":" + hex.EncodeToString(sum[:])
}

func TestCachedEmbedder_KeyAndTTL(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(mock redismock.ClientMock, key string)
		wantCalls int32
		want      []float32
	}{
		{
			name: "miss embeds and stores with ttl",
			setup: func(mock redismock.ClientMock, key string) {
				mock.ExpectGet(key).RedisNil()
				mock.ExpectSet(key, []byte(`[5,0.5,-0.25]`), 30*time.Minute).SetVal("OK")
			},
			wantCalls: 1,
			want:      []float32{5, 0.5, -0.25},
		},
		{
			name: "hit skips the embedder",
			setup: func(mock redismock.ClientMock, key string) {
				mock.ExpectGet(key).SetVal(`[1,2,3]`)
			},
			wantCalls: 0,
			want:      []float32{1, 2, 3},
		},
		{
			name: "write failure still returns the vector",
			setup: func(mock redismock.ClientMock, key string) {
				mock.ExpectGet(key).RedisNil()
				mock.ExpectSet(key, []byte(`[5,0.5,-0.25]`), 30*time.Minute).SetErr(errors.New("OOM command not allowed"))
			},
			wantCalls: 1,
			want:      []float32{5, 0.5, -0.25},
		},
		{
			name: "read failure falls through to the embedder",
			setup: func(mock redismock.ClientMock, key string) {
				mock.ExpectGet(key).SetErr(errors.New("LOADING"))
				mock.ExpectSet(key, []byte(`[5,0.5,-0.25]`), 30*time.Minute).SetVal("OK")
			},
			wantCalls: 1,
			want:      []float32{5, 0.5, -0.25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := redismock.NewClientMock()
			tt.setup(mock, embeddingKey("nomic-embed-text", "hello"))

			inner := &stubEmbedder{}
			c := NewCachedEmbedder(inner, database.NewRedisFromClient(client), "nomic-embed-text", 30*time.Minute, logger.NewTestLogger(t))

			vec, err := c.Embed(context.Background(), "hello")
			require.NoError(t, err)
			assert.Equal(t, tt.want, vec)
			assert.Equal(t, tt.wantCalls, inner.calls.Load())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCachedEmbedder_EmbedErrorNotCached(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(embeddingKey("m", "hello")).RedisNil()

	inner := &stubEmbedder{err: errors.New("connection refused")}
	c := NewCachedEmbedder(inner, database.NewRedisFromClient(client), "m", time.Hour, logger.NewTestLogger(t))

	_, err := c.Embed(context.Background(), "hello")
	assert.EqualError(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
