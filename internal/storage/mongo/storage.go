package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainErrors "github.com/omnicart/fulfillment/internal/domain/errors"
	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/domain/repository"
)

const paymentsCollection = "payments"

// Storage acts as repository facade backed by MongoDB.
type Storage struct {
	client   *mongo.Client
	payments *mongo.Collection
	logger   *slog.Logger
}

type paymentRepository struct {
	storage *Storage
}

// paymentDoc is the persisted shape of a payment. The amount is stored as a
// decimal string so no precision is lost in transit.
type paymentDoc struct {
	ID        string    `bson:"_id"`
	OrderID   int64     `bson:"order_id"`
	UserID    int64     `bson:"user_id"`
	Status    string    `bson:"status"`
	Amount    string    `bson:"payment_amount"`
	CreatedAt time.Time `bson:"timestamp"`
}

// New connects to MongoDB and prepares the payments collection. A unique
// index on order_id enforces the one-payment-per-order invariant at the
// storage level.
func New(ctx context.Context, uri, database string, logger *slog.Logger) (*Storage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	payments := client.Database(database).Collection(paymentsCollection)
	_, err = payments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "order_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ensure payment index: %w", err)
	}

	return &Storage{client: client, payments: payments, logger: logger}, nil
}

// Close releases the client connection pool.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Payments returns the payment repository backed by this storage.
func (s *Storage) Payments() repository.PaymentRepository {
	return &paymentRepository{storage: s}
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	doc := toDoc(payment)
	if _, err := r.storage.payments.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	created := *payment
	return &created, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	return r.findOne(ctx, bson.M{"order_id": orderID})
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	res, err := r.storage.payments.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status)}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *paymentRepository) findOne(ctx context.Context, filter bson.M) (*model.Payment, error) {
	var doc paymentDoc
	if err := r.storage.payments.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return fromDoc(&doc)
}

func toDoc(p *model.Payment) *paymentDoc {
	return &paymentDoc{
		ID:        p.ID,
		OrderID:   p.OrderID,
		UserID:    p.UserID,
		Status:    string(p.Status),
		Amount:    p.Amount.String(),
		CreatedAt: p.CreatedAt,
	}
}

func fromDoc(doc *paymentDoc) (*model.Payment, error) {
	amount, err := decimal.NewFromString(doc.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse payment amount: %w", err)
	}
	return &model.Payment{
		ID:        doc.ID,
		OrderID:   doc.OrderID,
		UserID:    doc.UserID,
		Status:    model.PaymentStatus(doc.Status),
		Amount:    amount,
		CreatedAt: doc.CreatedAt,
	}, nil
}
