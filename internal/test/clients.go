package test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/omnicart/fulfillment/internal/domain/model"
)

// UserClientStub simulates the user service client.
type UserClientStub struct {
	mu         sync.Mutex
	LastBearer string

	FindByIDFn func(context.Context, int64, string) (*model.UserProfile, error)
}

// FindByID delegates to the override or returns a minimal profile echoing id.
func (s *UserClientStub) FindByID(ctx context.Context, id int64, bearer string) (*model.UserProfile, error) {
	s.mu.Lock()
	s.LastBearer = bearer
	s.mu.Unlock()
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, id, bearer)
	}
	return &model.UserProfile{ID: id, Name: "Test", Surname: "User"}, nil
}

// Bearer returns the credential seen on the last call.
func (s *UserClientStub) Bearer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastBearer
}

// ProcessorStub simulates the settlement processor.
type ProcessorStub struct {
	Calls atomic.Int64

	SettleFn func(context.Context) (model.PaymentStatus, error)
}

// Settle delegates to the override or settles successfully.
func (s *ProcessorStub) Settle(ctx context.Context) (model.PaymentStatus, error) {
	s.Calls.Add(1)
	if s.SettleFn != nil {
		return s.SettleFn(ctx)
	}
	return model.PaymentStatusSucceeded, nil
}
