package get

import (
	"context"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra/tracing"
)

type Get struct {
	itemRepository item.Repository
}

func NewGet(itemRepository item.Repository) *Get {
	return &Get{
		itemRepository: itemRepository,
	}
}

func (g *Get) Get(ctx context.Context, input Input) (out Output, err error) {
	ctx, span := tracing.Start(ctx, "get", input.ItemId)
	defer func() { tracing.Finish(span, err) }()

	found, err := g.itemRepository.GetItem(ctx, input.ItemId)
	if err != nil {
		return Output{}, err
	}

	return Output{
		Data: found.Data,
	}, nil
}

type Input struct {
	ItemId string
}

type Output struct {
	Data map[string]any
}
