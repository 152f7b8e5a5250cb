package item

import "context"

// Repository is the items table. GetItem returns ErrNotFound when no entry exists for itemId;
// any other failure is wrapped in ErrStore.
type Repository interface {
	GetItem(ctx context.Context, itemId string) (*Item, error)
	SaveItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, itemId string) error
	Ping(ctx context.Context) error
}
