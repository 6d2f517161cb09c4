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

type refundRepository struct {
	collection *mongo.Collection
}

// NewRefundRepository создает репозиторий заявок на возврат. Одна заявка
// на пару (order_id, user_id), обеспечивается уникальным индексом
func NewRefundRepository(db *mongo.Database) RefundRepository {
	collection := db.Collection("refund_requests")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "order_id", Value: 1},
				{Key: "user_id", Value: 1},
			},
			Options: options.Index().SetName("order_user_idx").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_id_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Msg("Failed to create indexes on refund_requests")
	}

	return &refundRepository{collection: collection}
}

func (r *refundRepository) Create(ctx context.Context, refund *entity.RefundRequest) error {
	refund.CreatedAt = time.Now()
	refund.UpdatedAt = refund.CreatedAt

	result, err := r.collection.InsertOne(ctx, refund)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create refund request: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		refund.ID = oid
	}

	return nil
}

func (r *refundRepository) GetByID(ctx context.Context, id string) (*entity.RefundRequest, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrRefundNotFound
	}

	var refund entity.RefundRequest
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&refund)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRefundNotFound
		}
		return nil, fmt.Errorf("failed to get refund request: %w", err)
	}

	return &refund, nil
}

func (r *refundRepository) GetAll(ctx context.Context) ([]entity.RefundRequest, error) {
	return r.find(ctx, bson.M{})
}

func (r *refundRepository) GetByUserID(ctx context.Context, userID string) ([]entity.RefundRequest, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *refundRepository) find(ctx context.Context, filter bson.M) ([]entity.RefundRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find refund requests: %w", err)
	}
	defer cursor.Close(ctx)

	var refunds []entity.RefundRequest
	if err := cursor.All(ctx, &refunds); err != nil {
		return nil, fmt.Errorf("failed to decode refund requests: %w", err)
	}

	return refunds, nil
}

func (r *refundRepository) GetByOrderAndUser(ctx context.Context, orderID int64, userID string) (*entity.RefundRequest, error) {
	filter := bson.M{"order_id": orderID, "user_id": userID}

	var refund entity.RefundRequest
	err := r.collection.FindOne(ctx, filter).Decode(&refund)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRefundNotFound
		}
		return nil, fmt.Errorf("failed to get refund request: %w", err)
	}

	return &refund, nil
}

func (r *refundRepository) UpdateStatus(ctx context.Context, id string, status entity.RefundStatus) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrRefundNotFound
	}

	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update refund status: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrRefundNotFound
	}

	return nil
}
