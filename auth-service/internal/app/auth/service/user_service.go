package service

import (
	"context"
	"errors"
	"fmt"

	"bookstore/auth-service/internal/app/auth/entity"
	"bookstore/auth-service/internal/app/auth/repository"

	"github.com/google/uuid"
)

// UserService обрабатывает управление пользователями и batch-запросы
// от store-service
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateUserType изменяет тип пользователя (назначение менеджеров)
func (s *UserService) UpdateUserType(ctx context.Context, id uuid.UUID, userType string) (*entity.User, error) {
	switch userType {
	case entity.UserTypeCustomer, entity.UserTypeProduct, entity.UserTypeSales:
	default:
		return nil, ErrInvalidUserType
	}

	if err := s.userRepo.UpdateUserType(ctx, id, userType); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user type: %w", err)
	}

	return s.getUser(ctx, id)
}

// UpdateAddress обновляет адрес доставки пользователя
func (s *UserService) UpdateAddress(ctx context.Context, id uuid.UUID, address string) (*entity.User, error) {
	if err := s.userRepo.UpdateAddress(ctx, id, address); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	return s.getUser(ctx, id)
}

// LookupUsers возвращает компактные карточки пользователей для store-service.
// Невалидные и неизвестные ID пропускаются без ошибки
func (s *UserService) LookupUsers(ctx context.Context, ids []string) ([]entity.UserIdentity, error) {
	userIDs := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		userIDs = append(userIDs, parsed)
	}

	if len(userIDs) == 0 {
		return []entity.UserIdentity{}, nil
	}

	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup users: %w", err)
	}

	identities := make([]entity.UserIdentity, 0, len(users))
	for _, u := range users {
		identities = append(identities, entity.UserIdentity{
			ID:    u.ID.String(),
			Name:  u.Name,
			Email: u.Email,
		})
	}

	return identities, nil
}

func (s *UserService) getUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
