package repository

import (
	"context"
	"errors"

	"bookstore/store-service/internal/app/store/entity"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrCommentNotFound   = errors.New("comment not found")
	ErrRatingNotFound    = errors.New("rating not found")
	ErrWishlistNotFound  = errors.New("wishlist entry not found")
	ErrRefundNotFound    = errors.New("refund request not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicate         = errors.New("duplicate entry")
)

type BookRepository interface {
	Create(ctx context.Context, book *entity.Book) error
	GetByID(ctx context.Context, id string) (*entity.Book, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Book, error)
	GetAll(ctx context.Context) ([]entity.Book, error)
	Delete(ctx context.Context, id string) error
	UpdateStock(ctx context.Context, id string, stock int) error
	UpdatePrice(ctx context.Context, id string, price float64) error
	// DecrementStock списывает quantity с остатка книги, только если
	// текущего остатка хватает, атомарно в пределах документа.
	// Возвращает обновленную книгу, ErrBookNotFound или ErrInsufficientStock
	DecrementStock(ctx context.Context, id string, quantity int) (*entity.Book, error)
	DistinctCategories(ctx context.Context) ([]string, error)
}

type OrderRepository interface {
	// NextOrderID выделяет следующее значение монотонного номера заказа
	NextOrderID(ctx context.Context) (int64, error)
	Create(ctx context.Context, order *entity.Order) error
	GetByOrderID(ctx context.Context, orderID int64) (*entity.Order, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status entity.OrderStatus) error
	SetRefundRequest(ctx context.Context, orderID int64, refund *entity.RefundRequest) error
	// FindDeliveredWithBook возвращает доставленный заказ пользователя
	// с этой книгой либо ErrOrderNotFound
	FindDeliveredWithBook(ctx context.Context, userID, bookID string) (*entity.Order, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	GetApprovedByBook(ctx context.Context, bookID string) ([]entity.Comment, error)
	GetPending(ctx context.Context) ([]entity.Comment, error)
	GetAll(ctx context.Context) ([]entity.Comment, error)
	Exists(ctx context.Context, bookID, userID string, orderID int64) (bool, error)
	SetApproval(ctx context.Context, id string, approved bool) error
	Delete(ctx context.Context, id string) error
}

type RatingRepository interface {
	Create(ctx context.Context, rating *entity.Rating) error
	GetByBook(ctx context.Context, bookID string) ([]entity.Rating, error)
	GetByOrderID(ctx context.Context, orderID int64) ([]entity.Rating, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Rating, error)
	Exists(ctx context.Context, bookID, userID string, orderID int64) (bool, error)
	// DeleteByReviewKey удаляет оценку, парную комментарию по тройке
	// (книга, пользователь, заказ). Отсутствие оценки не является ошибкой
	DeleteByReviewKey(ctx context.Context, bookID, userID string, orderID int64) error
}

type WishlistRepository interface {
	Add(ctx context.Context, item *entity.Wishlist) error
	GetByUserID(ctx context.Context, userID string) ([]entity.Wishlist, error)
	GetByBookIDs(ctx context.Context, bookIDs []string) ([]entity.Wishlist, error)
	Exists(ctx context.Context, userID, bookID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type RefundRepository interface {
	Create(ctx context.Context, refund *entity.RefundRequest) error
	GetByID(ctx context.Context, id string) (*entity.RefundRequest, error)
	GetAll(ctx context.Context) ([]entity.RefundRequest, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.RefundRequest, error)
	GetByOrderAndUser(ctx context.Context, orderID int64, userID string) (*entity.RefundRequest, error)
	UpdateStatus(ctx context.Context, id string, status entity.RefundStatus) error
}
