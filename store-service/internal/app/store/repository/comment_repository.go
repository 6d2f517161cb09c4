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

type commentRepository struct {
	collection *mongo.Collection
}

// NewCommentRepository создает репозиторий комментариев. Уникальный
// составной индекс по (book_id, user_id, order_id) страхует
// прикладную проверку дубликатов
func NewCommentRepository(db *mongo.Database) CommentRepository {
	collection := db.Collection("comments")

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
			Keys:    bson.D{{Key: "book_id", Value: 1}, {Key: "approved", Value: 1}},
			Options: options.Index().SetName("book_approved_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Msg("Failed to create indexes on comments")
	}

	return &commentRepository{collection: collection}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	comment.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, comment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		comment.ID = oid
	}

	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCommentNotFound
	}

	var comment entity.Comment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return &comment, nil
}

func (r *commentRepository) GetApprovedByBook(ctx context.Context, bookID string) ([]entity.Comment, error) {
	filter := bson.M{"book_id": bookID, "approved": true}
	return r.find(ctx, filter)
}

func (r *commentRepository) GetPending(ctx context.Context) ([]entity.Comment, error) {
	return r.find(ctx, bson.M{"approved": false})
}

func (r *commentRepository) GetAll(ctx context.Context) ([]entity.Comment, error) {
	return r.find(ctx, bson.M{})
}

func (r *commentRepository) find(ctx context.Context, filter bson.M) ([]entity.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find comments: %w", err)
	}
	defer cursor.Close(ctx)

	var comments []entity.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}

	return comments, nil
}

func (r *commentRepository) Exists(ctx context.Context, bookID, userID string, orderID int64) (bool, error) {
	filter := bson.M{"book_id": bookID, "user_id": userID, "order_id": orderID}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check comment existence: %w", err)
	}

	return count > 0, nil
}

func (r *commentRepository) SetApproval(ctx context.Context, id string, approved bool) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCommentNotFound
	}

	update := bson.M{"$set": bson.M{"approved": approved}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to set comment approval: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCommentNotFound
	}

	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCommentNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCommentNotFound
	}

	return nil
}
