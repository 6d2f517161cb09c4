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

type wishlistRepository struct {
	collection *mongo.Collection
}

// NewWishlistRepository создает репозиторий вишлистов. Одна запись
// на пару (user_id, book_id), обеспечивается уникальным индексом,
// а не гонкой check-then-insert
func NewWishlistRepository(db *mongo.Database) WishlistRepository {
	collection := db.Collection("wishlists")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "book_id", Value: 1},
			},
			Options: options.Index().SetName("user_book_idx").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "book_id", Value: 1}},
			Options: options.Index().SetName("book_id_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Msg("Failed to create indexes on wishlists")
	}

	return &wishlistRepository{collection: collection}
}

func (r *wishlistRepository) Add(ctx context.Context, item *entity.Wishlist) error {
	item.AddedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to add wishlist entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid
	}

	return nil
}

func (r *wishlistRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Wishlist, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *wishlistRepository) GetByBookIDs(ctx context.Context, bookIDs []string) ([]entity.Wishlist, error) {
	return r.find(ctx, bson.M{"book_id": bson.M{"$in": bookIDs}})
}

func (r *wishlistRepository) find(ctx context.Context, filter bson.M) ([]entity.Wishlist, error) {
	opts := options.Find().SetSort(bson.D{{Key: "added_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find wishlist entries: %w", err)
	}
	defer cursor.Close(ctx)

	var items []entity.Wishlist
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode wishlist entries: %w", err)
	}

	return items, nil
}

func (r *wishlistRepository) Exists(ctx context.Context, userID, bookID string) (bool, error) {
	filter := bson.M{"user_id": userID, "book_id": bookID}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist existence: %w", err)
	}

	return count > 0, nil
}

func (r *wishlistRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrWishlistNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete wishlist entry: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrWishlistNotFound
	}

	return nil
}
