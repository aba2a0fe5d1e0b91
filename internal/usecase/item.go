package usecase

import (
	"context"

	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/domain/repository"
	"github.com/omnicart/fulfillment/internal/pkg/identity"
)

// ItemUseCase exposes the read-only item catalog. Any authenticated caller
// may browse it.
type ItemUseCase interface {
	Items(ctx context.Context) ([]model.Item, error)
	Item(ctx context.Context, id int64) (*model.Item, error)
}

type itemUseCase struct {
	items repository.ItemRepository
}

// NewItemUseCase constructs the catalog use case.
func NewItemUseCase(items repository.ItemRepository) ItemUseCase {
	return &itemUseCase{items: items}
}

func (uc *itemUseCase) Items(ctx context.Context) ([]model.Item, error) {
	if _, err := identity.FromContext(ctx); err != nil {
		return nil, err
	}
	return uc.items.List(ctx)
}

func (uc *itemUseCase) Item(ctx context.Context, id int64) (*model.Item, error) {
	if _, err := identity.FromContext(ctx); err != nil {
		return nil, err
	}
	return uc.items.GetByID(ctx, id)
}
