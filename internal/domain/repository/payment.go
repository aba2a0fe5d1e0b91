package repository

import (
	"context"

	"github.com/omnicart/fulfillment/internal/domain/model"
)

// PaymentRepository describes persistence operations with payments.
type PaymentRepository interface {
	// Create persists a new payment. A second payment for the same order
	// fails with ErrAlreadyExists.
	Create(ctx context.Context, payment *model.Payment) (*model.Payment, error)
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error)
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error
}
