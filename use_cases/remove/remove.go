package remove

import (
	"context"

	"go.uber.org/zap"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra/tracing"
	"github.com/giovaniif/items/protocols"
)

type Remove struct {
	itemRepository item.Repository
	blobMirror     protocols.BlobMirror
	logger         *zap.Logger
}

func NewRemove(itemRepository item.Repository, blobMirror protocols.BlobMirror, logger *zap.Logger) *Remove {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remove{
		itemRepository: itemRepository,
		blobMirror:     blobMirror,
		logger:         logger,
	}
}

func (r *Remove) Remove(ctx context.Context, input Input) (err error) {
	ctx, span := tracing.Start(ctx, "delete", input.ItemId)
	defer func() { tracing.Finish(span, err) }()

	if _, err := r.itemRepository.GetItem(ctx, input.ItemId); err != nil {
		return err
	}

	if err := r.itemRepository.DeleteItem(ctx, input.ItemId); err != nil {
		return err
	}

	if r.blobMirror != nil {
		if err := r.blobMirror.DeleteBlob(ctx, input.ItemId); err != nil {
			r.logger.Warn("Failed to remove mirrored item", zap.String("item_id", input.ItemId), zap.Error(err))
		}
	}
	return nil
}

type Input struct {
	ItemId string
}
