package repository

import (
	"context"
	"fmt"
	"time"

	"bookstore/notification-service/internal/app/notification/entity"
	"bookstore/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type notificationRepository struct {
	collection  *mongo.Collection
	maxAttempts int
}

// NewNotificationRepository создает репозиторий уведомлений с индексом
// по статусу для выборки pending писем. maxAttempts ограничивает выборку
// GetPending: письма, исчерпавшие лимит попыток, в повтор не попадают
func NewNotificationRepository(db *mongo.Database, maxAttempts int) NotificationRepository {
	collection := db.Collection("notifications")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("status_created_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn().Err(err).Msg("Failed to create index on notifications.status")
	}

	return &notificationRepository{collection: collection, maxAttempts: maxAttempts}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	now := time.Now()
	notification.CreatedAt = now
	notification.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		notification.ID = oid
	}

	return nil
}

func (r *notificationRepository) GetPending(ctx context.Context, limit int) ([]entity.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	filter := bson.M{
		"status":   entity.NotificationStatusPending,
		"attempts": bson.M{"$lt": r.maxAttempts},
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []entity.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	return notifications, nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"status":     entity.NotificationStatusSent,
			"updated_at": time.Now(),
		},
	})
}

func (r *notificationRepository) RecordFailure(ctx context.Context, id string, lastError string) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"last_error": lastError,
			"updated_at": time.Now(),
		},
		"$inc": bson.M{"attempts": 1},
	})
}

// MarkFailed переводит письмо в терминальный статус failed,
// после чего оно больше не попадает в повторную отправку
func (r *notificationRepository) MarkFailed(ctx context.Context, id string, lastError string) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"status":     entity.NotificationStatusFailed,
			"last_error": lastError,
			"updated_at": time.Now(),
		},
		"$inc": bson.M{"attempts": 1},
	})
}

func (r *notificationRepository) update(ctx context.Context, id string, update bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotificationNotFound
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrNotificationNotFound
	}

	return nil
}
