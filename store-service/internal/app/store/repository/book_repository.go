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

type bookRepository struct {
	collection *mongo.Collection
}

// NewBookRepository создает репозиторий книг с индексом по категории
func NewBookRepository(db *mongo.Database) BookRepository {
	collection := db.Collection("books")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "category", Value: 1}},
		Options: options.Index().SetName("category_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn().Err(err).Msg("Failed to create index on books.category")
	}

	return &bookRepository{collection: collection}
}

func (r *bookRepository) Create(ctx context.Context, book *entity.Book) error {
	book.CreatedAt = time.Now()
	book.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, book)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		book.ID = oid
	}

	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrBookNotFound
	}

	var book entity.Book
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&book)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return &book, nil
}

func (r *bookRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Book, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, oid)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find books: %w", err)
	}
	defer cursor.Close(ctx)

	var books []entity.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	return books, nil
}

func (r *bookRepository) GetAll(ctx context.Context) ([]entity.Book, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find books: %w", err)
	}
	defer cursor.Close(ctx)

	var books []entity.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	return books, nil
}

func (r *bookRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrBookNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrBookNotFound
	}

	return nil
}

func (r *bookRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	return r.updateField(ctx, id, bson.M{"stock": stock})
}

func (r *bookRepository) UpdatePrice(ctx context.Context, id string, price float64) error {
	return r.updateField(ctx, id, bson.M{"price": price})
}

func (r *bookRepository) updateField(ctx context.Context, id string, fields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrBookNotFound
	}

	fields["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrBookNotFound
	}

	return nil
}

// DecrementStock выполняет условное списание: фильтр требует
// stock >= quantity, поэтому конкурентные запросы не уведут остаток
// ниже нуля
func (r *bookRepository) DecrementStock(ctx context.Context, id string, quantity int) (*entity.Book, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrBookNotFound
	}

	filter := bson.M{
		"_id":   objectID,
		"stock": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -quantity},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var book entity.Book
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&book)
	if err == nil {
		return &book, nil
	}

	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	// Нет совпадения: книги не существует либо остатка не хватает
	count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
	if countErr != nil {
		return nil, fmt.Errorf("failed to classify stock decrement failure: %w", countErr)
	}
	if count == 0 {
		return nil, ErrBookNotFound
	}

	return nil, ErrInsufficientStock
}

func (r *bookRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}

	return categories, nil
}
