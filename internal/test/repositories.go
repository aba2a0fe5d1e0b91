package test

import (
	"context"
	"sync"

	domainErrors "github.com/omnicart/fulfillment/internal/domain/errors"
	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/domain/repository"
)

// OrderRepositoryStub is an in-memory order store with per-method overrides.
// The default behaviour is stateful so idempotency scenarios can run against
// it unmodified.
type OrderRepositoryStub struct {
	mu        sync.Mutex
	nextID    int64
	Orders    map[int64]*model.Order
	Processed map[string]bool

	CreateFn           func(context.Context, *model.Order) (*model.Order, error)
	GetByIDFn          func(context.Context, int64) (*model.Order, error)
	GetOwnerIDFn       func(context.Context, int64) (int64, error)
	ListFn             func(context.Context, model.OrderFilter) ([]model.Order, error)
	UpdateStatusFn     func(context.Context, int64, model.OrderStatus) (*model.Order, error)
	DeleteFn           func(context.Context, int64) error
	ProcessEventOnceFn func(context.Context, string, string, func(context.Context, repository.OrderTx) error) (bool, error)
}

// NewOrderRepositoryStub creates an empty in-memory order repository.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		Orders:    make(map[int64]*model.Order),
		Processed: make(map[string]bool),
	}
}

// Seed stores an order directly, bypassing Create.
func (s *OrderRepositoryStub) Seed(order *model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *order
	s.Orders[order.ID] = &copied
	if order.ID > s.nextID {
		s.nextID = order.ID
	}
}

func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	created := *order
	created.ID = s.nextID
	s.Orders[created.ID] = &created
	result := created
	return &result, nil
}

func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *OrderRepositoryStub) GetOwnerID(ctx context.Context, id int64) (int64, error) {
	if s.GetOwnerIDFn != nil {
		return s.GetOwnerIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, err := s.getLocked(id)
	if err != nil {
		return 0, err
	}
	return order.UserID, nil
}

func (s *OrderRepositoryStub) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, filter)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, order := range s.Orders {
		if filter.UserID != nil && order.UserID != *filter.UserID {
			continue
		}
		if len(filter.IDs) > 0 && !containsInt64(filter.IDs, order.ID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, order.Status) {
			continue
		}
		result = append(result, *order)
	}
	return result, nil
}

func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, id, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	s.Orders[id].Status = status
	order.Status = status
	return order, nil
}

func (s *OrderRepositoryStub) Delete(ctx context.Context, id int64) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Orders[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.Orders, id)
	return nil
}

func (s *OrderRepositoryStub) ProcessEventOnce(ctx context.Context, consumerGroup, eventID string, apply func(context.Context, repository.OrderTx) error) (bool, error) {
	if s.ProcessEventOnceFn != nil {
		return s.ProcessEventOnceFn(ctx, consumerGroup, eventID, apply)
	}
	key := consumerGroup + "|" + eventID
	s.mu.Lock()
	if s.Processed[key] {
		s.mu.Unlock()
		return false, nil
	}
	s.mu.Unlock()

	if err := apply(ctx, orderTxStub{parent: s}); err != nil {
		return false, err
	}

	s.mu.Lock()
	s.Processed[key] = true
	s.mu.Unlock()
	return true, nil
}

func (s *OrderRepositoryStub) getLocked(id int64) (*model.Order, error) {
	order, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

type orderTxStub struct {
	parent *OrderRepositoryStub
}

func (t orderTxStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	return t.parent.getLocked(id)
}

func (t orderTxStub) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	order, ok := t.parent.Orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	order.Status = status
	return nil
}

// PaymentRepositoryStub is an in-memory payment store enforcing the unique
// order constraint, with per-method overrides.
type PaymentRepositoryStub struct {
	mu       sync.Mutex
	Payments map[string]*model.Payment

	CreateFn       func(context.Context, *model.Payment) (*model.Payment, error)
	UpdateStatusFn func(context.Context, string, model.PaymentStatus) error
}

// NewPaymentRepositoryStub creates an empty in-memory payment repository.
func NewPaymentRepositoryStub() *PaymentRepositoryStub {
	return &PaymentRepositoryStub{Payments: make(map[string]*model.Payment)}
}

func (s *PaymentRepositoryStub) Create(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, payment)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Payments {
		if existing.OrderID == payment.OrderID {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	created := *payment
	s.Payments[created.ID] = &created
	result := created
	return &result, nil
}

func (s *PaymentRepositoryStub) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.Payments[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *payment
	return &copied, nil
}

func (s *PaymentRepositoryStub) GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, payment := range s.Payments {
		if payment.OrderID == orderID {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *PaymentRepositoryStub) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, id, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.Payments[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	payment.Status = status
	return nil
}

// ProcessedEventStub tracks processed event ids in memory.
type ProcessedEventStub struct {
	mu   sync.Mutex
	Seen map[string]bool

	IsProcessedFn   func(context.Context, string, string) (bool, error)
	MarkProcessedFn func(context.Context, string, string) error
}

// NewProcessedEventStub creates an empty dedup store.
func NewProcessedEventStub() *ProcessedEventStub {
	return &ProcessedEventStub{Seen: make(map[string]bool)}
}

func (s *ProcessedEventStub) IsProcessed(ctx context.Context, consumerGroup, eventID string) (bool, error) {
	if s.IsProcessedFn != nil {
		return s.IsProcessedFn(ctx, consumerGroup, eventID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Seen[consumerGroup+"|"+eventID], nil
}

func (s *ProcessedEventStub) MarkProcessed(ctx context.Context, consumerGroup, eventID string) error {
	if s.MarkProcessedFn != nil {
		return s.MarkProcessedFn(ctx, consumerGroup, eventID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Seen[consumerGroup+"|"+eventID] = true
	return nil
}

func containsInt64(values []int64, v int64) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsStatus(values []model.OrderStatus, v model.OrderStatus) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
