package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/tableside/internal/order"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderRepo struct {
	base *BaseRepo
}

func NewOrderRepo(base *BaseRepo) *OrderRepo {
	return &OrderRepo{base: base}
}

func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	coll, err := r.base.collection(ordersCollection)
	if err != nil {
		return err
	}

	if _, err := coll.InsertOne(ctx, o); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("cannot create order %s: %w", o.OrderNumber, order.ErrDuplicateOrderNumber)
		}
		return fmt.Errorf("cannot create order: %w", err)
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	coll, err := r.base.collection(ordersCollection)
	if err != nil {
		return nil, err
	}

	var o order.Order
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order: %w", err)
	}
	return &o, nil
}

// List returns the newest orders first together with the unpaged total.
func (r *OrderRepo) List(ctx context.Context, f order.OrderFilter) ([]*order.Order, int64, error) {
	coll, err := r.base.collection(ordersCollection)
	if err != nil {
		return nil, 0, err
	}

	filter := bson.M{}
	if f.BranchID != uuid.Nil {
		filter["branch_id"] = f.BranchID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		filter["payment_status"] = f.PaymentStatus
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(f.Offset))
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot list orders: %w", err)
	}
	defer cursor.Close(ctx)

	result := []*order.Order{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, 0, fmt.Errorf("cannot decode orders: %w", err)
	}
	return result, total, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int64, status string, updatedAt time.Time, updatedBy string) (bool, error) {
	coll, err := r.base.collection(ordersCollection)
	if err != nil {
		return false, err
	}

	filter := bson.M{"_id": id, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": updatedAt,
			"updated_by": updatedBy,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("cannot update order status: %w", err)
	}
	return result.MatchedCount == 1, nil
}
