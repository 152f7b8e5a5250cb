package update

import (
	"context"

	"go.uber.org/zap"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra/tracing"
	"github.com/giovaniif/items/protocols"
)

type Update struct {
	itemRepository item.Repository
	blobMirror     protocols.BlobMirror
	logger         *zap.Logger
}

func NewUpdate(itemRepository item.Repository, blobMirror protocols.BlobMirror, logger *zap.Logger) *Update {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Update{
		itemRepository: itemRepository,
		blobMirror:     blobMirror,
		logger:         logger,
	}
}

// Update replaces the whole payload of an existing item. Fields missing from
// input.Data are dropped, not merged.
func (u *Update) Update(ctx context.Context, input Input) (out Output, err error) {
	ctx, span := tracing.Start(ctx, "update", input.ItemId)
	defer func() { tracing.Finish(span, err) }()

	existing, err := u.itemRepository.GetItem(ctx, input.ItemId)
	if err != nil {
		return Output{}, err
	}

	replaced, err := item.New(existing.Id, input.Data)
	if err != nil {
		return Output{}, err
	}
	if err := u.itemRepository.SaveItem(ctx, replaced); err != nil {
		return Output{}, err
	}

	if u.blobMirror != nil {
		payload, err := replaced.Serialize()
		if err == nil {
			err = u.blobMirror.PutBlob(ctx, replaced.Id, payload)
		}
		if err != nil {
			u.logger.Warn("Failed to mirror item", zap.String("item_id", replaced.Id), zap.Error(err))
		}
	}

	return Output{
		Data: replaced.Data,
	}, nil
}

type Input struct {
	ItemId string
	Data   map[string]any
}

type Output struct {
	Data map[string]any
}
