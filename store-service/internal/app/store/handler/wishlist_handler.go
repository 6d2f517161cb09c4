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

type WishlistServiceInterface interface {
	Add(ctx context.Context, userID, bookID string) (*entity.Wishlist, error)
	GetUserWishlist(ctx context.Context, userID string) ([]entity.Wishlist, error)
	Remove(ctx context.Context, userID, id string) error
}

type WishlistHandler struct {
	wishlistService WishlistServiceInterface
	validator       *validator.Validate
}

func NewWishlistHandler(wishlistService WishlistServiceInterface) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		validator:       validator.New(),
	}
}

func (h *WishlistHandler) Add(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.AddWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	item, err := h.wishlistService.Add(c.Request.Context(), userID, req.BookID)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		if errors.Is(err, service.ErrAlreadyWishlisted) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Book already in wishlist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to wishlist"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *WishlistHandler) GetUserWishlist(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	items, err := h.wishlistService.GetUserWishlist(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get wishlist"})
		return
	}

	c.JSON(http.StatusOK, entity.WishlistResponse{
		Items: items,
		Total: len(items),
	})
}

func (h *WishlistHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Wishlist entry ID is required"})
		return
	}

	if err := h.wishlistService.Remove(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrWishlistNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove wishlist entry"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Wishlist entry removed",
	})
}
