package handler

import (
	"context"
	"errors"
	"net/http"

	"bookstore/store-service/internal/app/store/entity"
	"bookstore/store-service/internal/app/store/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type BookServiceInterface interface {
	CreateBook(ctx context.Context, req *entity.CreateBookRequest) (*entity.Book, error)
	GetBook(ctx context.Context, id string) (*entity.Book, error)
	GetAllBooks(ctx context.Context) ([]entity.Book, error)
	DeleteBook(ctx context.Context, id string) error
	GetCategories(ctx context.Context) ([]string, error)
	UpdateStock(ctx context.Context, id string, stock int) (*entity.Book, error)
	UpdatePrice(ctx context.Context, id string, price float64) (*entity.Book, error)
	DecreaseStockBatch(ctx context.Context, req *entity.DecreaseStockRequest) *entity.BatchStockResult
	ApplyDiscount(ctx context.Context, req *entity.DiscountRequest) ([]entity.DiscountUpdate, error)
}

type BookHandler struct {
	bookService BookServiceInterface
	validator   *validator.Validate
}

func NewBookHandler(bookService BookServiceInterface) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		validator:   validator.New(),
	}
}

func (h *BookHandler) CreateBook(c *gin.Context) {
	var req entity.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	book, err := h.bookService.CreateBook(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book category"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create book"})
		return
	}

	c.JSON(http.StatusCreated, book)
}

func (h *BookHandler) GetBook(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book ID is required"})
		return
	}

	book, err := h.bookService.GetBook(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get book"})
		return
	}

	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) GetAllBooks(c *gin.Context) {
	books, err := h.bookService.GetAllBooks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get books"})
		return
	}

	c.JSON(http.StatusOK, entity.BookListResponse{
		Books: books,
		Total: len(books),
	})
}

func (h *BookHandler) DeleteBook(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book ID is required"})
		return
	}

	if err := h.bookService.DeleteBook(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete book"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Book deleted successfully",
	})
}

func (h *BookHandler) GetCategories(c *gin.Context) {
	categories, err := h.bookService.GetCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *BookHandler) UpdateStock(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book ID is required"})
		return
	}

	var req entity.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	book, err := h.bookService.UpdateStock(c.Request.Context(), id, req.Stock)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock"})
		return
	}

	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) UpdatePrice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book ID is required"})
		return
	}

	var req entity.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	book, err := h.bookService.UpdatePrice(c.Request.Context(), id, req.Price)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update price"})
		return
	}

	c.JSON(http.StatusOK, book)
}

// DecreaseStock списывает позиции одного заказа со склада. Код ответа
// отражает расклад: 200 все списано, 207 частично, 400 ничего
func (h *BookHandler) DecreaseStock(c *gin.Context) {
	var req entity.DecreaseStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	result := h.bookService.DecreaseStockBatch(c.Request.Context(), &req)

	switch {
	case result.AllSucceeded():
		c.JSON(http.StatusOK, result)
	case result.AllFailed():
		c.JSON(http.StatusBadRequest, result)
	default:
		c.JSON(http.StatusMultiStatus, result)
	}
}

func (h *BookHandler) ApplyDiscount(c *gin.Context) {
	var req entity.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	updates, err := h.bookService.ApplyDiscount(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply discount"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updates": updates,
		"total":   len(updates),
	})
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
