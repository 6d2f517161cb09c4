package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"bookstore/store-service/internal/app/store/entity"
	"bookstore/store-service/internal/app/store/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, userID string, req *entity.CreateOrderRequest) (*entity.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*entity.Order, error)
	GetUserOrders(ctx context.Context, userID string) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status entity.OrderStatus) error
	CheckPurchase(ctx context.Context, userID, bookID string) (*entity.PurchaseCheckResponse, error)
}

type OrderHandler struct {
	orderService OrderServiceInterface
	validator    *validator.Validate
}

func NewOrderHandler(orderService OrderServiceInterface) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validator:    validator.New(),
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order references an unknown book"})
			return
		}
		if errors.Is(err, service.ErrEmptyOrder) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order must contain at least one item"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	orders, err := h.orderService.GetUserOrders(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, entity.OrderListResponse{
		Orders: orders,
		Total:  len(orders),
	})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=processing in-transit delivered cancelled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	if err := h.orderService.UpdateStatus(c.Request.Context(), orderID, entity.OrderStatus(req.Status)); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Order status updated",
	})
}

func (h *OrderHandler) CheckPurchase(c *gin.Context) {
	userID := c.Param("user_id")
	bookID := c.Param("book_id")
	if userID == "" || bookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID and Book ID are required"})
		return
	}

	result, err := h.orderService.CheckPurchase(c.Request.Context(), userID, bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check purchase"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// currentUserID читает id аутентифицированного пользователя из контекста
// и сам пишет ответ с ошибкой, если его нет
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}

	userIDStr, ok := userID.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID"})
		return "", false
	}

	return userIDStr, true
}
