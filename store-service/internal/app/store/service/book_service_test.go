package service

import (
	"context"
	"errors"
	"testing"

	"bookstore/store-service/internal/app/store/entity"
	"bookstore/store-service/internal/app/store/infrastructure"
	"bookstore/store-service/internal/app/store/repository"
	"bookstore/store-service/internal/app/store/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newBookService() (*BookService, *mocks.MockBookRepository, *mocks.MockWishlistRepository, *mocks.MockCategoryCache, *mocks.MockMessagePublisher, *mocks.MockAuthServiceClient) {
	bookRepo := new(mocks.MockBookRepository)
	wishlistRepo := new(mocks.MockWishlistRepository)
	cache := new(mocks.MockCategoryCache)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	authClient := new(mocks.MockAuthServiceClient)
	svc := NewBookService(bookRepo, wishlistRepo, cache, publisher, authClient)
	return svc, bookRepo, wishlistRepo, cache, publisher, authClient
}

func TestCreateBook_InvalidCategory(t *testing.T) {
	svc, _, _, _, _, _ := newBookService()

	req := &entity.CreateBookRequest{Title: "Dune", Author: "Frank Herbert", Price: 9.99, Category: "spaceships"}

	book, err := svc.CreateBook(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.Nil(t, book)
}

func TestCreateBook_Success(t *testing.T) {
	svc, bookRepo, _, cache, _, _ := newBookService()
	ctx := context.Background()

	bookRepo.On("Create", ctx, mock.AnythingOfType("*entity.Book")).Return(nil).Run(func(args mock.Arguments) {
		book := args.Get(1).(*entity.Book)
		book.ID = primitive.NewObjectID()
	})
	cache.On("DeleteCategories", ctx).Return(nil)

	book, err := svc.CreateBook(ctx, &entity.CreateBookRequest{
		Title: "Dune", Author: "Frank Herbert", Price: 9.99, Stock: 5, Category: "fiction",
	})

	assert.NoError(t, err)
	assert.NotNil(t, book)
	assert.Equal(t, "fiction", book.Category)
	cache.AssertCalled(t, "DeleteCategories", ctx)
}

func TestGetCategories_CacheHit(t *testing.T) {
	svc, bookRepo, _, cache, _, _ := newBookService()
	ctx := context.Background()

	cache.On("GetCategories", ctx).Return([]string{"fiction", "science"}, nil)

	categories, err := svc.GetCategories(ctx)

	assert.NoError(t, err)
	assert.Equal(t, []string{"fiction", "science"}, categories)
	bookRepo.AssertNotCalled(t, "DistinctCategories", ctx)
}

func TestGetCategories_CacheMissFallsBackToDatabase(t *testing.T) {
	svc, bookRepo, _, cache, _, _ := newBookService()
	ctx := context.Background()

	cache.On("GetCategories", ctx).Return(nil, nil)
	bookRepo.On("DistinctCategories", ctx).Return([]string{"history"}, nil)
	cache.On("SetCategories", ctx, []string{"history"}, mock.Anything).Return(nil)

	categories, err := svc.GetCategories(ctx)

	assert.NoError(t, err)
	assert.Equal(t, []string{"history"}, categories)
}

func TestGetCategories_EmptyCatalogUsesFixedSet(t *testing.T) {
	svc, bookRepo, _, cache, _, _ := newBookService()
	ctx := context.Background()

	cache.On("GetCategories", ctx).Return(nil, nil)
	bookRepo.On("DistinctCategories", ctx).Return([]string{}, nil)
	cache.On("SetCategories", ctx, entity.BookCategories, mock.Anything).Return(nil)

	categories, err := svc.GetCategories(ctx)

	assert.NoError(t, err)
	assert.Equal(t, entity.BookCategories, categories)
}

func TestDecreaseStockBatch_AllSucceed(t *testing.T) {
	svc, bookRepo, _, _, _, _ := newBookService()
	ctx := context.Background()

	bookRepo.On("DecrementStock", ctx, "book-1", 2).
		Return(&entity.Book{Title: "Dune", Stock: 8}, nil)
	bookRepo.On("DecrementStock", ctx, "book-2", 1).
		Return(&entity.Book{Title: "Neuromancer", Stock: 0}, nil)

	result := svc.DecreaseStockBatch(ctx, &entity.DecreaseStockRequest{
		Items: []entity.StockDecreaseItem{
			{ID: "book-1", Quantity: 2},
			{ID: "book-2", Quantity: 1},
		},
	})

	assert.True(t, result.AllSucceeded())
	assert.Len(t, result.Updates, 2)
	assert.Equal(t, 8, result.Updates[0].NewStock)
	assert.Equal(t, 0, result.Updates[1].NewStock)
	assert.Empty(t, result.Errors)
}

func TestDecreaseStockBatch_PartialFailurePreservesSuccesses(t *testing.T) {
	svc, bookRepo, _, _, _, _ := newBookService()
	ctx := context.Background()

	bookRepo.On("DecrementStock", ctx, "book-1", 1).
		Return(&entity.Book{Title: "Dune", Stock: 4}, nil)
	bookRepo.On("DecrementStock", ctx, "book-2", 10).
		Return(nil, repository.ErrInsufficientStock)
	bookRepo.On("GetByID", ctx, "book-2").
		Return(&entity.Book{Title: "Neuromancer", Stock: 3}, nil)
	bookRepo.On("DecrementStock", ctx, "book-3", 1).
		Return(&entity.Book{Title: "Hyperion", Stock: 0}, nil)

	result := svc.DecreaseStockBatch(ctx, &entity.DecreaseStockRequest{
		Items: []entity.StockDecreaseItem{
			{ID: "book-1", Quantity: 1},
			{ID: "book-2", Quantity: 10},
			{ID: "book-3", Quantity: 1},
		},
	})

	assert.False(t, result.AllSucceeded())
	assert.False(t, result.AllFailed())
	assert.Len(t, result.Updates, 2)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, "insufficient stock", result.Errors[0].Reason)
	assert.Equal(t, 10, result.Errors[0].Requested)
	assert.Equal(t, 3, result.Errors[0].Available)
}

func TestDecreaseStockBatch_AllFail(t *testing.T) {
	svc, bookRepo, _, _, _, _ := newBookService()
	ctx := context.Background()

	bookRepo.On("DecrementStock", ctx, "missing", 1).
		Return(nil, repository.ErrBookNotFound)
	bookRepo.On("DecrementStock", ctx, "book-2", 5).
		Return(nil, repository.ErrInsufficientStock)
	bookRepo.On("GetByID", ctx, "book-2").
		Return(&entity.Book{Stock: 1}, nil)

	result := svc.DecreaseStockBatch(ctx, &entity.DecreaseStockRequest{
		Items: []entity.StockDecreaseItem{
			{ID: "missing", Quantity: 1},
			{ID: "book-2", Quantity: 5},
		},
	})

	assert.True(t, result.AllFailed())
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, "not found", result.Errors[0].Reason)
}

func TestApplyDiscount_RoundsToTwoDecimals(t *testing.T) {
	svc, bookRepo, wishlistRepo, _, _, _ := newBookService()
	ctx := context.Background()

	bookID := primitive.NewObjectID()
	bookRepo.On("GetByIDs", ctx, []string{bookID.Hex()}).
		Return([]entity.Book{{ID: bookID, Title: "Dune", Price: 19.99}}, nil)
	bookRepo.On("UpdatePrice", ctx, bookID.Hex(), 17.99).Return(nil)
	wishlistRepo.On("GetByBookIDs", mock.Anything, mock.Anything).Return([]entity.Wishlist{}, nil)

	updates, err := svc.ApplyDiscount(ctx, &entity.DiscountRequest{
		BookIDs: []string{bookID.Hex()},
		Rate:    10,
	})

	assert.NoError(t, err)
	assert.Len(t, updates, 1)
	assert.Equal(t, 19.99, updates[0].OldPrice)
	assert.Equal(t, 17.99, updates[0].NewPrice)
}

func TestNotifyWishlistUsers_OneEventPerWishlistedUser(t *testing.T) {
	svc, _, wishlistRepo, _, publisher, authClient := newBookService()

	updates := []entity.DiscountUpdate{
		{BookID: "book-1", Title: "Dune", OldPrice: 19.99, NewPrice: 17.99},
	}

	wishlistRepo.On("GetByBookIDs", mock.Anything, []string{"book-1"}).Return([]entity.Wishlist{
		{UserID: "user-1", BookID: "book-1"},
		{UserID: "user-2", BookID: "book-1"},
	}, nil)
	authClient.On("GetUsers", mock.Anything, []string{"user-1", "user-2"}).Return(map[string]infrastructure.UserIdentity{
		"user-1": {ID: "user-1", Name: "Alice", Email: "alice@example.com"},
		"user-2": {ID: "user-2", Name: "Bob", Email: "bob@example.com"},
	}, nil)
	publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc.notifyWishlistUsers(context.Background(), updates)

	assert.Len(t, publisher.Messages, 2)
	publisher.AssertNumberOfCalls(t, "PublishMessage", 2)
}

func TestNotifyWishlistUsers_PublishFailureDoesNotStopFanOut(t *testing.T) {
	svc, _, wishlistRepo, _, publisher, authClient := newBookService()

	updates := []entity.DiscountUpdate{
		{BookID: "book-1", Title: "Dune", NewPrice: 17.99},
	}

	wishlistRepo.On("GetByBookIDs", mock.Anything, []string{"book-1"}).Return([]entity.Wishlist{
		{UserID: "user-1", BookID: "book-1"},
		{UserID: "user-2", BookID: "book-1"},
	}, nil)
	authClient.On("GetUsers", mock.Anything, mock.Anything).Return(map[string]infrastructure.UserIdentity{
		"user-1": {ID: "user-1", Name: "Alice", Email: "alice@example.com"},
		"user-2": {ID: "user-2", Name: "Bob", Email: "bob@example.com"},
	}, nil)
	publisher.On("PublishMessage", mock.Anything, "alice@example.com", mock.Anything).Return(errors.New("kafka down"))
	publisher.On("PublishMessage", mock.Anything, "bob@example.com", mock.Anything).Return(nil)

	svc.notifyWishlistUsers(context.Background(), updates)

	publisher.AssertNumberOfCalls(t, "PublishMessage", 2)
}

func TestUpdateStock_NotFound(t *testing.T) {
	svc, bookRepo, _, _, _, _ := newBookService()
	ctx := context.Background()

	bookRepo.On("UpdateStock", ctx, "missing", 5).Return(repository.ErrBookNotFound)

	book, err := svc.UpdateStock(ctx, "missing", 5)

	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.Nil(t, book)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 17.99, round2(19.99*0.9))
	assert.Equal(t, 0.01, round2(0.005))
	assert.Equal(t, 10.0, round2(10.0))
}
