package repository

import (
	"context"
	"fmt"
	"time"

	"bookstore/pkg/logger"
	"bookstore/store-service/internal/app/store/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ratingRepository struct {
	collection *mongo.Collection
}

// NewRatingRepository создает репозиторий оценок с тем же уникальным
// ключом (book_id, user_id, order_id), что и у комментариев:
// комментарий и его оценка образуют один отзыв
func NewRatingRepository(db *mongo.Database) RatingRepository {
	collection := db.Collection("ratings")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "book_id", Value: 1},
				{Key: "user_id", Value: 1},
				{Key: "order_id", Value: 1},
			},
			Options: options.Index().SetName("review_key_idx").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "book_id", Value: 1}},
			Options: options.Index().SetName("book_id_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Msg("Failed to create indexes on ratings")
	}

	return &ratingRepository{collection: collection}
}

func (r *ratingRepository) Create(ctx context.Context, rating *entity.Rating) error {
	rating.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, rating)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create rating: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rating.ID = oid
	}

	return nil
}

func (r *ratingRepository) GetByBook(ctx context.Context, bookID string) ([]entity.Rating, error) {
	return r.find(ctx, bson.M{"book_id": bookID})
}

func (r *ratingRepository) GetByOrderID(ctx context.Context, orderID int64) ([]entity.Rating, error) {
	return r.find(ctx, bson.M{"order_id": orderID})
}

func (r *ratingRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Rating, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *ratingRepository) find(ctx context.Context, filter bson.M) ([]entity.Rating, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var ratings []entity.Rating
	if err := cursor.All(ctx, &ratings); err != nil {
		return nil, fmt.Errorf("failed to decode ratings: %w", err)
	}

	return ratings, nil
}

func (r *ratingRepository) Exists(ctx context.Context, bookID, userID string, orderID int64) (bool, error) {
	filter := bson.M{"book_id": bookID, "user_id": userID, "order_id": orderID}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check rating existence: %w", err)
	}

	return count > 0, nil
}

func (r *ratingRepository) DeleteByReviewKey(ctx context.Context, bookID, userID string, orderID int64) error {
	filter := bson.M{"book_id": bookID, "user_id": userID, "order_id": orderID}

	if _, err := r.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}

	return nil
}
