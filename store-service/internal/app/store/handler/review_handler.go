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

type ReviewServiceInterface interface {
	CreateComment(ctx context.Context, userID string, req *entity.CreateCommentRequest) (*entity.Comment, error)
	CreateRating(ctx context.Context, userID string, req *entity.CreateRatingRequest) (*entity.Rating, error)
	GetBookReviews(ctx context.Context, bookID string) (*entity.BookReviewsResponse, error)
	GetBookAverage(ctx context.Context, bookID string) (*entity.AverageRatingResponse, error)
	GetRatingsByOrder(ctx context.Context, orderID int64) ([]entity.Rating, error)
	GetRatingsByUser(ctx context.Context, userID string) ([]entity.Rating, error)
	GetPendingComments(ctx context.Context) ([]entity.Comment, error)
	GetAllComments(ctx context.Context) ([]entity.Comment, error)
	SetCommentApproval(ctx context.Context, id string, approved bool) (*entity.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

func (h *ReviewHandler) CreateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	comment, err := h.reviewService.CreateComment(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotAllowed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Comment requires a delivered order containing the book"})
			return
		}
		if errors.Is(err, service.ErrDuplicateReview) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Comment already submitted for this order"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *ReviewHandler) CreateRating(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	rating, err := h.reviewService.CreateRating(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotAllowed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rating requires a delivered order containing the book"})
			return
		}
		if errors.Is(err, service.ErrDuplicateReview) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rating already submitted for this order"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rating"})
		return
	}

	c.JSON(http.StatusCreated, rating)
}

func (h *ReviewHandler) GetBookReviews(c *gin.Context) {
	bookID := c.Param("book_id")
	if bookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book ID is required"})
		return
	}

	reviews, err := h.reviewService.GetBookReviews(c.Request.Context(), bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reviews"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) GetBookAverage(c *gin.Context) {
	bookID := c.Param("book_id")
	if bookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book ID is required"})
		return
	}

	average, err := h.reviewService.GetBookAverage(c.Request.Context(), bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get average rating"})
		return
	}

	c.JSON(http.StatusOK, average)
}

func (h *ReviewHandler) GetRatingsByOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	ratings, err := h.reviewService.GetRatingsByOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get ratings"})
		return
	}

	c.JSON(http.StatusOK, entity.RatingListResponse{
		Ratings: ratings,
		Total:   len(ratings),
	})
}

func (h *ReviewHandler) GetRatingsByUser(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	ratings, err := h.reviewService.GetRatingsByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get ratings"})
		return
	}

	c.JSON(http.StatusOK, entity.RatingListResponse{
		Ratings: ratings,
		Total:   len(ratings),
	})
}

func (h *ReviewHandler) GetPendingComments(c *gin.Context) {
	comments, err := h.reviewService.GetPendingComments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get pending comments"})
		return
	}

	c.JSON(http.StatusOK, entity.CommentListResponse{
		Comments: comments,
		Total:    len(comments),
	})
}

func (h *ReviewHandler) GetAllComments(c *gin.Context) {
	comments, err := h.reviewService.GetAllComments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get comments"})
		return
	}

	c.JSON(http.StatusOK, entity.CommentListResponse{
		Comments: comments,
		Total:    len(comments),
	})
}

func (h *ReviewHandler) SetApproval(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment ID is required"})
		return
	}

	var req entity.SetApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	comment, err := h.reviewService.SetCommentApproval(c.Request.Context(), id, *req.Approved)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (h *ReviewHandler) DeleteComment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment ID is required"})
		return
	}

	if err := h.reviewService.DeleteComment(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Comment deleted successfully",
	})
}
