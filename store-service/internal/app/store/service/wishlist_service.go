package service

import (
	"context"
	"errors"
	"fmt"

	"bookstore/store-service/internal/app/store/entity"
	"bookstore/store-service/internal/app/store/repository"
)

var (
	ErrWishlistNotFound  = errors.New("wishlist entry not found")
	ErrAlreadyWishlisted = errors.New("book already in wishlist")
)

type WishlistService struct {
	wishlistRepo repository.WishlistRepository
	bookRepo     repository.BookRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, bookRepo repository.BookRepository) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		bookRepo:     bookRepo,
	}
}

func (s *WishlistService) Add(ctx context.Context, userID, bookID string) (*entity.Wishlist, error) {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to resolve book: %w", err)
	}

	item := &entity.Wishlist{
		UserID: userID,
		BookID: bookID,
	}

	if err := s.wishlistRepo.Add(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyWishlisted
		}
		return nil, fmt.Errorf("failed to add wishlist entry: %w", err)
	}

	return item, nil
}

func (s *WishlistService) GetUserWishlist(ctx context.Context, userID string) ([]entity.Wishlist, error) {
	items, err := s.wishlistRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	return items, nil
}

// Remove удаляет запись из вишлиста пользователя. Чужие записи
// для пользователя невидимы, поэтому чужой id выглядит как not found
func (s *WishlistService) Remove(ctx context.Context, userID, id string) error {
	items, err := s.wishlistRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get wishlist: %w", err)
	}

	owned := false
	for _, item := range items {
		if item.ID.Hex() == id {
			owned = true
			break
		}
	}
	if !owned {
		return ErrWishlistNotFound
	}

	if err := s.wishlistRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrWishlistNotFound) {
			return ErrWishlistNotFound
		}
		return fmt.Errorf("failed to delete wishlist entry: %w", err)
	}

	return nil
}
