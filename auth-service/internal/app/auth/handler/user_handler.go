package handler

import (
	"context"
	"errors"
	"net/http"

	"bookstore/auth-service/internal/app/auth/entity"
	"bookstore/auth-service/internal/app/auth/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type UserServiceInterface interface {
	UpdateUserType(ctx context.Context, id uuid.UUID, userType string) (*entity.User, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, address string) (*entity.User, error)
	LookupUsers(ctx context.Context, ids []string) ([]entity.UserIdentity, error)
}

type UserHandler struct {
	userService UserServiceInterface
	validator   *validator.Validate
}

func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

func (h *UserHandler) UpdateUserType(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req entity.UpdateUserTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	user, err := h.userService.UpdateUserType(c.Request.Context(), id, req.UserType)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if errors.Is(err, service.ErrInvalidUserType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user type"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user type"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateAddress(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req entity.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	user, err := h.userService.UpdateAddress(c.Request.Context(), id, req.Address)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update address"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// LookupUsers - внутренний batch-эндпоинт для store-service
func (h *UserHandler) LookupUsers(c *gin.Context) {
	var req entity.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	users, err := h.userService.LookupUsers(c.Request.Context(), req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to lookup users"})
		return
	}

	c.JSON(http.StatusOK, entity.LookupResponse{Users: users})
}
