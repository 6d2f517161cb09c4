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

type RefundServiceInterface interface {
	Create(ctx context.Context, userID string, req *entity.CreateRefundRequest) (*entity.RefundRequest, error)
	GetAll(ctx context.Context) ([]entity.RefundRequest, error)
	GetByUser(ctx context.Context, userID string) ([]entity.RefundRequest, error)
	UpdateStatus(ctx context.Context, id string, status entity.RefundStatus) (*entity.RefundRequest, error)
}

type RefundHandler struct {
	refundService RefundServiceInterface
	validator     *validator.Validate
}

func NewRefundHandler(refundService RefundServiceInterface) *RefundHandler {
	return &RefundHandler{
		refundService: refundService,
		validator:     validator.New(),
	}
}

func (h *RefundHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	refund, err := h.refundService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if errors.Is(err, service.ErrRefundExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Refund request already exists for this order"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create refund request"})
		return
	}

	c.JSON(http.StatusCreated, refund)
}

func (h *RefundHandler) GetAll(c *gin.Context) {
	refunds, err := h.refundService.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get refund requests"})
		return
	}

	c.JSON(http.StatusOK, entity.RefundListResponse{
		Requests: refunds,
		Total:    len(refunds),
	})
}

func (h *RefundHandler) GetByUser(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	refunds, err := h.refundService.GetByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get refund requests"})
		return
	}

	c.JSON(http.StatusOK, entity.RefundListResponse{
		Requests: refunds,
		Total:    len(refunds),
	})
}

func (h *RefundHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refund request ID is required"})
		return
	}

	var req entity.UpdateRefundStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	refund, err := h.refundService.UpdateStatus(c.Request.Context(), id, entity.RefundStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrRefundNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Refund request not found"})
			return
		}
		if errors.Is(err, service.ErrRefundNotPending) || errors.Is(err, service.ErrInvalidRefundStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Refund request is already decided"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update refund request"})
		return
	}

	c.JSON(http.StatusOK, refund)
}
