package repository

import (
	"context"

	"github.com/omnicart/fulfillment/internal/domain/model"
)

// ItemRepository describes read access to the item catalog.
type ItemRepository interface {
	List(ctx context.Context) ([]model.Item, error)
	GetByID(ctx context.Context, id int64) (*model.Item, error)
}
