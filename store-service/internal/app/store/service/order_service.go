package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookstore/pkg/metrics"
	"bookstore/store-service/internal/app/store/entity"
	"bookstore/store-service/internal/app/store/repository"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyOrder    = errors.New("order has no items")
)

// OrderService создает заказы со снапшотами цен и отвечает на проверки
// покупки для права на отзыв
type OrderService struct {
	orderRepo repository.OrderRepository
	bookRepo  repository.BookRepository
}

func NewOrderService(orderRepo repository.OrderRepository, bookRepo repository.BookRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
	}
}

// CreateOrder копирует текущее название и цену каждой позиции в документ
// заказа, чтобы изменения каталога не переписывали историю покупок.
// Остатки списываются отдельным batch-запросом, не здесь
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req *entity.CreateOrderRequest) (*entity.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]entity.OrderItem, 0, len(req.Items))
	total := 0.0
	for _, item := range req.Items {
		book, err := s.bookRepo.GetByID(ctx, item.BookID)
		if err != nil {
			if errors.Is(err, repository.ErrBookNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrBookNotFound, item.BookID)
			}
			return nil, fmt.Errorf("failed to resolve order item: %w", err)
		}

		items = append(items, entity.OrderItem{
			BookID:   item.BookID,
			Title:    book.Title,
			Author:   book.Author,
			Price:    book.Price,
			Image:    book.Image,
			Quantity: item.Quantity,
		})
		total += book.Price * float64(item.Quantity)
	}

	orderID, err := s.orderRepo.NextOrderID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate order id: %w", err)
	}

	order := &entity.Order{
		OrderID:      orderID,
		OrderNumber:  fmt.Sprintf("ORD-%06d", orderID),
		UserID:       userID,
		Items:        items,
		ShippingInfo: req.ShippingInfo,
		Total:        round2(total),
		Status:       entity.OrderStatusProcessing,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	metrics.OrdersCreated.Inc()

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*entity.Order, error) {
	order, err := s.orderRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]entity.Order, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user orders: %w", err)
	}

	return orders, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status entity.OrderStatus) error {
	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}

// CheckPurchase сообщает, есть ли у пользователя доставленный заказ
// с этой книгой. Статус сравнивается без учета регистра: в старых
// документах встречается смешанный регистр
func (s *OrderService) CheckPurchase(ctx context.Context, userID, bookID string) (*entity.PurchaseCheckResponse, error) {
	order, err := s.orderRepo.FindDeliveredWithBook(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return &entity.PurchaseCheckResponse{Purchased: false}, nil
		}
		return nil, fmt.Errorf("failed to check purchase: %w", err)
	}

	return &entity.PurchaseCheckResponse{
		Purchased: true,
		OrderID:   order.OrderID,
	}, nil
}

// orderCovers проверяет, что заказ принадлежит пользователю, доставлен
// и содержит книгу
func orderCovers(order *entity.Order, userID, bookID string) bool {
	if order.UserID != userID {
		return false
	}
	if !strings.EqualFold(string(order.Status), string(entity.OrderStatusDelivered)) {
		return false
	}
	for _, item := range order.Items {
		if item.BookID == bookID {
			return true
		}
	}
	return false
}
