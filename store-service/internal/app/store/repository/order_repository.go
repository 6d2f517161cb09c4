package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookstore/pkg/logger"
	"bookstore/store-service/internal/app/store/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewOrderRepository создает репозиторий заказов. Числовой order_id
// уникален; по нему на заказ ссылаются комментарии, оценки и возвраты
func NewOrderRepository(db *mongo.Database) OrderRepository {
	collection := db.Collection("orders")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetName("order_id_idx").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_id_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Msg("Failed to create indexes on orders")
	}

	return &orderRepository{
		collection: collection,
		counters:   db.Collection("counters"),
	}
}

// NextOrderID инкрементирует и возвращает последовательность номеров
// заказов из коллекции counters. Upsert создает документ счетчика
// при первом выделении
func (r *orderRepository) NextOrderID(ctx context.Context) (int64, error) {
	filter := bson.M{"_id": "order_id"}
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	if err := r.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		return 0, fmt.Errorf("failed to allocate order id: %w", err)
	}

	return counter.Seq, nil
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	order.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}

	return nil
}

func (r *orderRepository) GetByOrderID(ctx context.Context, orderID int64) (*entity.Order, error) {
	var order entity.Order
	err := r.collection.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []entity.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, status entity.OrderStatus) error {
	update := bson.M{"$set": bson.M{"status": status}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"order_id": orderID}, update)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) SetRefundRequest(ctx context.Context, orderID int64, refund *entity.RefundRequest) error {
	update := bson.M{"$set": bson.M{"refund_request": refund}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"order_id": orderID}, update)
	if err != nil {
		return fmt.Errorf("failed to set refund request: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) FindDeliveredWithBook(ctx context.Context, userID, bookID string) (*entity.Order, error) {
	filter := bson.M{
		"user_id":       userID,
		"status":        entity.OrderStatusDelivered,
		"items.book_id": bookID,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var order entity.Order
	err := r.collection.FindOne(ctx, filter, opts).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find delivered order: %w", err)
	}

	return &order, nil
}
