package event

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omnicart/fulfillment/internal/domain/model"
)

// Kind discriminates event payloads on the wire.
type Kind string

const (
	KindOrderCreated         Kind = "OrderCreatedEvent"
	KindPaymentCreated       Kind = "PaymentCreatedEvent"
	KindPaymentStatusUpdated Kind = "PaymentStatusUpdatedEvent"
)

// Envelope is the wire format shared by all saga events. Every published
// event carries a fresh unique id; consumers dedup on it.
type Envelope struct {
	EventID string          `json:"eventId"`
	Kind    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// New wraps a payload into an envelope with a generated event id.
func New(kind Kind, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return Envelope{
		EventID: uuid.NewString(),
		Kind:    kind,
		Payload: data,
	}, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	return nil
}

// OrderItem is an order line as carried in events. The price snapshot lets
// the payment participant compute the amount from the event alone.
type OrderItem struct {
	ItemID   int64           `json:"itemId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// OrderCreated announces a freshly persisted order.
type OrderCreated struct {
	OrderID int64             `json:"orderId"`
	UserID  int64             `json:"userId"`
	Status  model.OrderStatus `json:"status"`
	Items   []OrderItem       `json:"items"`
}

// Key returns the partition key: all events about one order share it so a
// consumer group observes them in publish order.
func (e OrderCreated) Key() string { return strconv.FormatInt(e.OrderID, 10) }

// FromOrder builds the event payload for a persisted order.
func FromOrder(order *model.Order) OrderCreated {
	items := make([]OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItem{
			ItemID:   item.ItemID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return OrderCreated{
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
		Items:   items,
	}
}

// PaymentCreated announces a new pending payment for an order.
type PaymentCreated struct {
	PaymentID string              `json:"paymentId"`
	OrderID   int64               `json:"orderId"`
	UserID    int64               `json:"userId"`
	Status    model.PaymentStatus `json:"status"`
	Amount    decimal.Decimal     `json:"amount"`
	Timestamp time.Time           `json:"timestamp"`
}

func (e PaymentCreated) Key() string { return strconv.FormatInt(e.OrderID, 10) }

// FromPayment builds the event payload for a persisted payment.
func FromPayment(payment *model.Payment) PaymentCreated {
	return PaymentCreated{
		PaymentID: payment.ID,
		OrderID:   payment.OrderID,
		UserID:    payment.UserID,
		Status:    payment.Status,
		Amount:    payment.Amount,
		Timestamp: payment.CreatedAt,
	}
}

// PaymentStatusUpdated announces a settlement state change, carrying both the
// previous and the new status.
type PaymentStatusUpdated struct {
	PaymentID      string              `json:"paymentId"`
	OrderID        int64               `json:"orderId"`
	PreviousStatus model.PaymentStatus `json:"previousStatus"`
	NewStatus      model.PaymentStatus `json:"newStatus"`
}

func (e PaymentStatusUpdated) Key() string { return strconv.FormatInt(e.OrderID, 10) }
