package create

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra/tracing"
	"github.com/giovaniif/items/protocols"
)

type Create struct {
	itemRepository item.Repository
	blobMirror     protocols.BlobMirror
	logger         *zap.Logger
}

func NewCreate(itemRepository item.Repository, blobMirror protocols.BlobMirror, logger *zap.Logger) *Create {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Create{
		itemRepository: itemRepository,
		blobMirror:     blobMirror,
		logger:         logger,
	}
}

// Create stores input.Data under input.ItemId unless an entry already exists.
// The existence check and the write are two separate store calls.
func (c *Create) Create(ctx context.Context, input Input) (out Output, err error) {
	ctx, span := tracing.Start(ctx, "create", input.ItemId)
	defer func() { tracing.Finish(span, err) }()

	_, err = c.itemRepository.GetItem(ctx, input.ItemId)
	if err == nil {
		return Output{}, item.ErrAlreadyExists
	}
	if !errors.Is(err, item.ErrNotFound) {
		return Output{}, err
	}

	newItem, err := item.New(input.ItemId, input.Data)
	if err != nil {
		return Output{}, err
	}
	if err := c.itemRepository.SaveItem(ctx, newItem); err != nil {
		return Output{}, err
	}

	c.mirror(ctx, newItem)
	return Output{
		Data: newItem.Data,
	}, nil
}

func (c *Create) mirror(ctx context.Context, it *item.Item) {
	if c.blobMirror == nil {
		return
	}
	payload, err := it.Serialize()
	if err == nil {
		err = c.blobMirror.PutBlob(ctx, it.Id, payload)
	}
	if err != nil {
		c.logger.Warn("Failed to mirror item", zap.String("item_id", it.Id), zap.Error(err))
	}
}

type Input struct {
	ItemId string
	Data   map[string]any
}

type Output struct {
	Data map[string]any
}
