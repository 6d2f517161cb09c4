package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"bookstore/pkg/logger"
	"bookstore/pkg/metrics"
	"bookstore/store-service/internal/app/store/entity"
	"bookstore/store-service/internal/app/store/infrastructure"
	"bookstore/store-service/internal/app/store/repository"
	"bookstore/store-service/internal/app/store/util"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrInvalidCategory = errors.New("invalid book category")
)

const categoriesCacheTTL = time.Hour

// BookService обрабатывает каталог: CRUD, кешируемый список категорий,
// изменения цены и остатков, batch-списание остатков и скидки
// с рассылкой уведомлений по вишлистам
type BookService struct {
	bookRepo     repository.BookRepository
	wishlistRepo repository.WishlistRepository
	cache        util.CategoryCache
	publisher    util.MessagePublisher
	authClient   infrastructure.AuthServiceClient
}

func NewBookService(
	bookRepo repository.BookRepository,
	wishlistRepo repository.WishlistRepository,
	cache util.CategoryCache,
	publisher util.MessagePublisher,
	authClient infrastructure.AuthServiceClient,
) *BookService {
	return &BookService{
		bookRepo:     bookRepo,
		wishlistRepo: wishlistRepo,
		cache:        cache,
		publisher:    publisher,
		authClient:   authClient,
	}
}

func (s *BookService) CreateBook(ctx context.Context, req *entity.CreateBookRequest) (*entity.Book, error) {
	if !isValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	book := &entity.Book{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		PublishedYear: req.PublishedYear,
		Image:         req.Image,
		Price:         req.Price,
		Stock:         req.Stock,
		Category:      req.Category,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.invalidateCategories(ctx)

	return book, nil
}

func (s *BookService) GetBook(ctx context.Context, id string) (*entity.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

func (s *BookService) GetAllBooks(ctx context.Context) ([]entity.Book, error) {
	books, err := s.bookRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get books: %w", err)
	}

	return books, nil
}

func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}

	s.invalidateCategories(ctx)

	return nil
}

// GetCategories возвращает используемые категории (cache-aside, TTL час).
// Для пустого каталога возвращается фиксированный набор категорий,
// чтобы у витрины всегда были фильтры
func (s *BookService) GetCategories(ctx context.Context) ([]string, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err == nil && len(categories) > 0 {
		return categories, nil
	}

	categories, err = s.bookRepo.DistinctCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if len(categories) == 0 {
		categories = entity.BookCategories
	}

	if err := s.cache.SetCategories(ctx, categories, categoriesCacheTTL); err != nil {
		// Список уже получен из базы, холодный кеш не критичен
		logger.Warn().Err(err).Msg("Failed to cache categories")
	}

	return categories, nil
}

func (s *BookService) UpdateStock(ctx context.Context, id string, stock int) (*entity.Book, error) {
	if err := s.bookRepo.UpdateStock(ctx, id, stock); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	return s.GetBook(ctx, id)
}

func (s *BookService) UpdatePrice(ctx context.Context, id string, price float64) (*entity.Book, error) {
	if err := s.bookRepo.UpdatePrice(ctx, id, price); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update price: %w", err)
	}

	return s.GetBook(ctx, id)
}

// DecreaseStockBatch обрабатывает позиции одного заказа независимо.
// Каждая позиция либо списывает остаток книги (не ниже нуля, атомарно
// в пределах документа), либо добавляет ошибку с причиной; неудача
// следующей позиции не откатывает успех предыдущей
func (s *BookService) DecreaseStockBatch(ctx context.Context, req *entity.DecreaseStockRequest) *entity.BatchStockResult {
	result := &entity.BatchStockResult{
		Updates: make([]entity.StockUpdate, 0, len(req.Items)),
		Errors:  make([]entity.StockError, 0),
	}

	for _, item := range req.Items {
		book, err := s.bookRepo.DecrementStock(ctx, item.ID, item.Quantity)
		if err == nil {
			result.Updates = append(result.Updates, entity.StockUpdate{
				BookID:   item.ID,
				Title:    book.Title,
				NewStock: book.Stock,
			})
			metrics.StockDecrements.WithLabelValues("success").Inc()
			continue
		}

		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			result.Errors = append(result.Errors, entity.StockError{
				BookID: item.ID,
				Reason: "not found",
			})
			metrics.StockDecrements.WithLabelValues("not_found").Inc()
		case errors.Is(err, repository.ErrInsufficientStock):
			available := 0
			if current, lookupErr := s.bookRepo.GetByID(ctx, item.ID); lookupErr == nil {
				available = current.Stock
			}
			result.Errors = append(result.Errors, entity.StockError{
				BookID:    item.ID,
				Reason:    "insufficient stock",
				Requested: item.Quantity,
				Available: available,
			})
			metrics.StockDecrements.WithLabelValues("insufficient").Inc()
		default:
			// Ошибки базы по отдельным позициям собираются, batch не прерывается
			logger.Error().Err(err).Str("book_id", item.ID).Msg("Stock decrement failed")
			result.Errors = append(result.Errors, entity.StockError{
				BookID: item.ID,
				Reason: "internal error",
			})
			metrics.StockDecrements.WithLabelValues("error").Inc()
		}
	}

	return result
}

// ApplyDiscount пересчитывает цену каждой найденной книги и возвращает
// список изменений. Рассылка уведомлений по вишлистам идет в отдельной
// горутине и не блокирует ответ клиенту
func (s *BookService) ApplyDiscount(ctx context.Context, req *entity.DiscountRequest) ([]entity.DiscountUpdate, error) {
	books, err := s.bookRepo.GetByIDs(ctx, req.BookIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get books for discount: %w", err)
	}

	updates := make([]entity.DiscountUpdate, 0, len(books))
	for _, book := range books {
		newPrice := round2(book.Price * (1 - req.Rate/100))

		if err := s.bookRepo.UpdatePrice(ctx, book.ID.Hex(), newPrice); err != nil {
			logger.Error().Err(err).Str("book_id", book.ID.Hex()).Msg("Failed to apply discount")
			continue
		}

		updates = append(updates, entity.DiscountUpdate{
			BookID:   book.ID.Hex(),
			Title:    book.Title,
			OldPrice: book.Price,
			NewPrice: newPrice,
		})
		metrics.DiscountsApplied.Inc()
	}

	// Fire-and-forget: цены уже сохранены, HTTP-ответ не ждет
	// разрешения вишлистов и отправки уведомлений
	go s.notifyWishlistUsers(context.Background(), updates)

	return updates, nil
}

// notifyWishlistUsers публикует одно событие DISCOUNT_APPLIED на каждую
// пару (владелец вишлиста, книга со скидкой). Ошибки логируются
// и проглатываются: уведомления best-effort и не влияют на изменение цен
func (s *BookService) notifyWishlistUsers(ctx context.Context, updates []entity.DiscountUpdate) {
	if len(updates) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	byBook := make(map[string]entity.DiscountUpdate, len(updates))
	bookIDs := make([]string, 0, len(updates))
	for _, u := range updates {
		byBook[u.BookID] = u
		bookIDs = append(bookIDs, u.BookID)
	}

	entries, err := s.wishlistRepo.GetByBookIDs(ctx, bookIDs)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve wishlists for discount notification")
		return
	}
	if len(entries) == 0 {
		return
	}

	userIDs := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !seen[e.UserID] {
			seen[e.UserID] = true
			userIDs = append(userIDs, e.UserID)
		}
	}

	users, err := s.authClient.GetUsers(ctx, userIDs)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve users for discount notification")
		return
	}

	for _, e := range entries {
		user, ok := users[e.UserID]
		if !ok {
			continue
		}
		update := byBook[e.BookID]

		event := entity.NotificationEvent{
			EventType: entity.EventDiscountApplied,
			Email:     user.Email,
			Name:      user.Name,
			BookTitle: update.Title,
			NewPrice:  update.NewPrice,
			Timestamp: time.Now(),
		}

		if err := s.publishEvent(ctx, user.Email, event); err != nil {
			logger.Error().Err(err).
				Str("email", user.Email).
				Str("book_id", e.BookID).
				Msg("Failed to publish discount notification")
		}
	}
}

func (s *BookService) publishEvent(ctx context.Context, key string, event entity.NotificationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	if err := s.publisher.PublishMessage(ctx, key, data); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}

func (s *BookService) invalidateCategories(ctx context.Context) {
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}
}

func isValidCategory(category string) bool {
	for _, c := range entity.BookCategories {
		if c == category {
			return true
		}
	}
	return false
}

// round2 округляет до двух знаков - точности хранения цен
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
