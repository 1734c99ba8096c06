package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide-composer/internal/common/config"
	"slide-composer/internal/common/database"
	apperrors "slide-composer/internal/common/errors"
	"slide-composer/internal/composer/engine"
	"slide-composer/internal/models"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *database.RedisClient) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func sinks(t *testing.T) map[string]Sink {
	_, client := setupRedis(t)
	return map[string]Sink{
		"file":  NewFileSink(t.TempDir()),
		"redis": NewRedisSink(client, "test", time.Hour),
	}
}

func TestSink_SaveAndLoad(t *testing.T) {
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := Key("run-1", ArtifactMarkup)

			require.NoError(t, sink.Save(ctx, key, ContentTypeHTML, []byte("<html></html>")))
			require.NoError(t, sink.Save(ctx, key, ContentTypeHTML, []byte("<html>v2</html>")))

			a, err := sink.Load(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, "<html>v2</html>", string(a.Data))
			assert.Equal(t, ContentTypeHTML, a.ContentType)
			assert.False(t, a.CreatedAt.IsZero())

			_, err = sink.Load(ctx, Key("run-2", ArtifactMarkup))
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestSink_RejectsBadKeys(t *testing.T) {
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			err := sink.Save(context.Background(), "../etc/passwd", ContentTypeJSON, []byte("{}"))
			require.Error(t, err)
			stdErr, ok := apperrors.AsStandard(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeStoreWriteFailed, stdErr.Code)
			assert.True(t, stdErr.Retryable)

			_, err = sink.Load(context.Background(), "a/b/c")
			assert.Error(t, err)
		})
	}
}

func TestRedisSink_TTL(t *testing.T) {
	mr, client := setupRedis(t)
	sink := NewRedisSink(client, "decks", 10*time.Minute)

	require.NoError(t, sink.Save(context.Background(), Key("abc", ArtifactDeck), ContentTypeJSON, []byte(`{"slides":[]}`)))
	assert.True(t, mr.Exists("decks:abc/deck"))
	assert.Equal(t, 10*time.Minute, mr.TTL("decks:abc/deck"))

	mr.FastForward(11 * time.Minute)
	_, err := sink.Load(context.Background(), Key("abc", ArtifactDeck))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRedisSink_WriteFailure(t *testing.T) {
	mr, client := setupRedis(t)
	mr.Close()

	err := NewRedisSink(client, "", 0).Save(context.Background(), Key("x", ArtifactResult), ContentTypeJSON, []byte("{}"))
	require.Error(t, err)
	stdErr, ok := apperrors.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeStoreWriteFailed, stdErr.Code)
}

func TestPersist(t *testing.T) {
	e, err := engine.New(engine.Config{}, nil)
	require.NoError(t, err)
	in := &engine.Input{Records: []models.SlideRecord{{"slide_type": "opening", "title": "Hello"}}}

	res, err := e.ComposeDeck(context.Background(), in)
	require.NoError(t, err)

	sink := NewFileSink(t.TempDir())
	keys, err := Persist(context.Background(), sink, res)
	require.NoError(t, err)
	runID := res.RunID.String()
	assert.Equal(t, []string{Key(runID, ArtifactDeck), Key(runID, ArtifactResult)}, keys)

	a, err := sink.Load(context.Background(), Key(runID, ArtifactResult))
	require.NoError(t, err)
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(a.Data, &summary))
	assert.Equal(t, runID, summary["runId"])
	assert.Equal(t, "deck", summary["backend"])
	assert.Equal(t, float64(1), summary["rendered"])

	res, err = e.ComposeMarkup(context.Background(), in)
	require.NoError(t, err)
	keys, err = Persist(context.Background(), sink, res)
	require.NoError(t, err)
	assert.Equal(t, Key(res.RunID.String(), ArtifactMarkup), keys[0])
}

func TestNew(t *testing.T) {
	sink, err := New(config.StoreConfig{Kind: "file", OutputDir: t.TempDir()}, config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &FileSink{}, sink)

	sink, err = New(config.StoreConfig{Kind: "redis", KeyPrefix: "p", TTL: 60}, config.RedisConfig{Address: "localhost:6379"})
	require.NoError(t, err)
	assert.IsType(t, &RedisSink{}, sink)

	_, err = New(config.StoreConfig{Kind: "redis"}, config.RedisConfig{})
	assert.Error(t, err)

	_, err = New(config.StoreConfig{Kind: "s3"}, config.RedisConfig{})
	assert.Error(t, err)
}
