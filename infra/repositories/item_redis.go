package repositories

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra"
)

const itemKeyPrefix = "items:"

type ItemRepositoryRedis struct {
	client *redis.Client
}

func NewItemRepositoryRedis(client *redis.Client) *ItemRepositoryRedis {
	return &ItemRepositoryRedis{client: client}
}

func (r *ItemRepositoryRedis) key(itemId string) string {
	return itemKeyPrefix + itemId
}

func (r *ItemRepositoryRedis) GetItem(ctx context.Context, itemId string) (*item.Item, error) {
	data, err := r.client.Get(ctx, r.key(itemId)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, item.ErrNotFound
	}
	if err != nil {
		return nil, infra.NewStoreError("redis get", err)
	}
	return decodeItem(itemId, data)
}

func (r *ItemRepositoryRedis) SaveItem(ctx context.Context, it *item.Item) error {
	raw, err := it.Serialize()
	if err != nil {
		return infra.NewStoreError("redis encode", err)
	}
	if err := r.client.Set(ctx, r.key(it.Id), raw, 0).Err(); err != nil {
		return infra.NewStoreError("redis set", err)
	}
	return nil
}

func (r *ItemRepositoryRedis) DeleteItem(ctx context.Context, itemId string) error {
	if err := r.client.Del(ctx, r.key(itemId)).Err(); err != nil {
		return infra.NewStoreError("redis del", err)
	}
	return nil
}

func (r *ItemRepositoryRedis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return infra.NewStoreError("redis ping", err)
	}
	return nil
}

func (r *ItemRepositoryRedis) Close() error {
	return r.client.Close()
}
