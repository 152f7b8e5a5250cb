package repositories

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giovaniif/items/domain/item"
)

func newRedisRepository(t *testing.T) (*ItemRepositoryRedis, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	repo := NewItemRepositoryRedis(redis.NewClient(&redis.Options{Addr: server.Addr()}))
	t.Cleanup(func() { _ = repo.Close() })
	return repo, server
}

func TestItemRepositoryRedis(t *testing.T) {
	repo, _ := newRedisRepository(t)
	testRepository(t, repo)
}

func TestItemRepositoryRedisKeyLayout(t *testing.T) {
	repo, server := newRedisRepository(t)
	require.NoError(t, repo.SaveItem(context.Background(), &item.Item{Id: "foo", Data: map[string]any{"name": "A"}}))

	raw, err := server.Get("items:foo")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"A"}`, raw)
}

func TestItemRepositoryRedisUnavailable(t *testing.T) {
	repo, server := newRedisRepository(t)
	server.Close()

	_, err := repo.GetItem(context.Background(), "foo")
	require.ErrorIs(t, err, item.ErrStore)
	require.ErrorIs(t, repo.Ping(context.Background()), item.ErrStore)
}
