package repositories

import (
	"context"
	"sync"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra"
)

// ItemRepositoryMemory keeps items as encoded JSON so callers never share maps with the store.
type ItemRepositoryMemory struct {
	mutex sync.RWMutex
	items map[string][]byte
}

func NewItemRepositoryMemory() *ItemRepositoryMemory {
	return &ItemRepositoryMemory{
		items: make(map[string][]byte),
	}
}

func (r *ItemRepositoryMemory) GetItem(ctx context.Context, itemId string) (*item.Item, error) {
	r.mutex.RLock()
	raw, ok := r.items[itemId]
	r.mutex.RUnlock()
	if !ok {
		return nil, item.ErrNotFound
	}
	return decodeItem(itemId, raw)
}

func (r *ItemRepositoryMemory) SaveItem(ctx context.Context, it *item.Item) error {
	raw, err := it.Serialize()
	if err != nil {
		return infra.NewStoreError("memory encode", err)
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.items[it.Id] = raw
	return nil
}

func (r *ItemRepositoryMemory) DeleteItem(ctx context.Context, itemId string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.items, itemId)
	return nil
}

func (r *ItemRepositoryMemory) Ping(ctx context.Context) error {
	return nil
}

func (r *ItemRepositoryMemory) Close() error {
	return nil
}

func decodeItem(itemId string, raw []byte) (*item.Item, error) {
	data, err := item.ParseDataBytes(raw)
	if err != nil {
		return nil, infra.NewStoreError("decode "+itemId, err)
	}
	return &item.Item{Id: itemId, Data: data}, nil
}
