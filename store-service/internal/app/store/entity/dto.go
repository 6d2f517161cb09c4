package entity

import "time"

type CreateBookRequest struct {
	Title         string  `json:"title" validate:"required,min=1,max=300"`
	Author        string  `json:"author" validate:"required,min=1,max=200"`
	Description   string  `json:"description" validate:"max=5000"`
	PublishedYear int     `json:"published_year" validate:"omitempty,gte=0"`
	Image         string  `json:"image" validate:"omitempty,url"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	Stock         int     `json:"stock" validate:"gte=0"`
	Category      string  `json:"category" validate:"required"`
}

type UpdateStockRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}

type UpdatePriceRequest struct {
	Price float64 `json:"price" validate:"required,gt=0"`
}

type StockDecreaseItem struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type DecreaseStockRequest struct {
	Items []StockDecreaseItem `json:"items" validate:"required,min=1,dive"`
}

type StockUpdate struct {
	BookID   string `json:"book_id"`
	Title    string `json:"title"`
	NewStock int    `json:"new_stock"`
}

type StockError struct {
	BookID    string `json:"book_id"`
	Reason    string `json:"reason"` // "not found" or "insufficient stock"
	Requested int    `json:"requested,omitempty"`
	Available int    `json:"available,omitempty"`
}

// BatchStockResult содержит результат по каждой позиции batch-списания.
// Частичная неудача отдается наружу, а не откатывается
type BatchStockResult struct {
	Updates []StockUpdate `json:"updates"`
	Errors  []StockError  `json:"errors"`
}

// AllSucceeded - ни одна позиция не завершилась ошибкой
func (r *BatchStockResult) AllSucceeded() bool {
	return len(r.Errors) == 0
}

// AllFailed - все позиции завершились ошибкой
func (r *BatchStockResult) AllFailed() bool {
	return len(r.Updates) == 0 && len(r.Errors) > 0
}

type DiscountRequest struct {
	BookIDs []string `json:"book_ids" validate:"required,min=1"`
	Rate    float64  `json:"rate" validate:"required,gt=0,lt=100"`
}

type DiscountUpdate struct {
	BookID   string  `json:"book_id"`
	Title    string  `json:"title"`
	OldPrice float64 `json:"old_price"`
	NewPrice float64 `json:"new_price"`
}

type CreateOrderItem struct {
	BookID   string `json:"book_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items        []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
	ShippingInfo ShippingInfo      `json:"shipping_info" validate:"required"`
}

type CreateCommentRequest struct {
	BookID  string `json:"book_id" validate:"required"`
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
	Text    string `json:"text" validate:"required,min=1,max=2000"`
}

type SetApprovalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

type CreateRatingRequest struct {
	BookID  string `json:"book_id" validate:"required"`
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

type AddWishlistRequest struct {
	BookID string `json:"book_id" validate:"required"`
}

type CreateRefundRequest struct {
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
	Reason  string `json:"reason" validate:"required,min=1,max=2000"`
}

type UpdateRefundStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// ReviewEntry - строка объединенной ленты отзывов книги. Комментарий
// и оценка с общими (user_id, order_id) сворачиваются в одну запись;
// Text равен null для записей только с оценкой, Rating равен null
// для записей только с комментарием
type ReviewEntry struct {
	CommentID *string   `json:"comment_id,omitempty"`
	RatingID  *string   `json:"rating_id,omitempty"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	OrderID   int64     `json:"order_id"`
	Text      *string   `json:"text"`
	Rating    *int      `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

type BookReviewsResponse struct {
	Reviews       []ReviewEntry `json:"reviews"`
	AverageRating float64       `json:"average_rating"`
	RatingCount   int           `json:"rating_count"`
	Total         int           `json:"total"`
}

type AverageRatingResponse struct {
	BookID        string  `json:"book_id"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
}

type PurchaseCheckResponse struct {
	Purchased bool  `json:"purchased"`
	OrderID   int64 `json:"order_id,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type BookListResponse struct {
	Books []Book `json:"books"`
	Total int    `json:"total"`
}

type OrderListResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}

type CommentListResponse struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
}

type RatingListResponse struct {
	Ratings []Rating `json:"ratings"`
	Total   int      `json:"total"`
}

type WishlistResponse struct {
	Items []Wishlist `json:"items"`
	Total int        `json:"total"`
}

type RefundListResponse struct {
	Requests []RefundRequest `json:"requests"`
	Total    int             `json:"total"`
}
