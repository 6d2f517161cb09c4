package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookstore/pkg/logger"
	"bookstore/pkg/metrics"
	"bookstore/store-service/internal/app/store/entity"
	"bookstore/store-service/internal/app/store/infrastructure"
	"bookstore/store-service/internal/app/store/repository"
	"bookstore/store-service/internal/app/store/util"
)

var (
	ErrRefundNotFound      = errors.New("refund request not found")
	ErrRefundExists        = errors.New("refund request already exists for this order")
	ErrRefundNotPending    = errors.New("refund request is already decided")
	ErrInvalidRefundStatus = errors.New("invalid refund status transition")
)

// RefundService ведет процесс возвратов: покупатели открывают заявки
// по своим заказам, менеджеры по продажам их решают, а решения
// рассылаются событиями уведомлений
type RefundService struct {
	refundRepo repository.RefundRepository
	orderRepo  repository.OrderRepository
	publisher  util.MessagePublisher
	authClient infrastructure.AuthServiceClient
}

func NewRefundService(
	refundRepo repository.RefundRepository,
	orderRepo repository.OrderRepository,
	publisher util.MessagePublisher,
	authClient infrastructure.AuthServiceClient,
) *RefundService {
	return &RefundService{
		refundRepo: refundRepo,
		orderRepo:  orderRepo,
		publisher:  publisher,
		authClient: authClient,
	}
}

// Create открывает pending заявку на возврат по заказу пользователя.
// Одна заявка на пару (заказ, пользователь): повторная попытка
// отклоняется независимо от исхода первой
func (s *RefundService) Create(ctx context.Context, userID string, req *entity.CreateRefundRequest) (*entity.RefundRequest, error) {
	order, err := s.orderRepo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}

	if existing, err := s.refundRepo.GetByOrderAndUser(ctx, req.OrderID, userID); err == nil && existing != nil {
		return nil, ErrRefundExists
	} else if err != nil && !errors.Is(err, repository.ErrRefundNotFound) {
		return nil, fmt.Errorf("failed to check for existing refund: %w", err)
	}

	refund := &entity.RefundRequest{
		OrderID: req.OrderID,
		UserID:  userID,
		Reason:  req.Reason,
		Status:  entity.RefundStatusPending,
	}

	if err := s.refundRepo.Create(ctx, refund); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRefundExists
		}
		return nil, fmt.Errorf("failed to create refund request: %w", err)
	}

	if err := s.orderRepo.UpdateStatus(ctx, req.OrderID, entity.OrderStatusRefundRequested); err != nil {
		logger.Error().Err(err).Int64("order_id", req.OrderID).Msg("Failed to mark order refund-requested")
	}
	if err := s.orderRepo.SetRefundRequest(ctx, req.OrderID, refund); err != nil {
		logger.Error().Err(err).Int64("order_id", req.OrderID).Msg("Failed to embed refund request on order")
	}

	metrics.RefundRequestsByStatus.WithLabelValues(string(entity.RefundStatusPending)).Inc()

	return refund, nil
}

func (s *RefundService) GetByID(ctx context.Context, id string) (*entity.RefundRequest, error) {
	refund, err := s.refundRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRefundNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, fmt.Errorf("failed to get refund request: %w", err)
	}

	return refund, nil
}

func (s *RefundService) GetAll(ctx context.Context) ([]entity.RefundRequest, error) {
	refunds, err := s.refundRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get refund requests: %w", err)
	}

	return refunds, nil
}

func (s *RefundService) GetByUser(ctx context.Context, userID string) ([]entity.RefundRequest, error) {
	refunds, err := s.refundRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user refund requests: %w", err)
	}

	return refunds, nil
}

// UpdateStatus применяет решение менеджера по продажам. Двигаются только
// pending заявки и только в approved или rejected. Одобрение переводит
// заказ в refunded, любое решение публикует ровно одно событие уведомления.
// Перевод pending в pending - no-op без события
func (s *RefundService) UpdateStatus(ctx context.Context, id string, status entity.RefundStatus) (*entity.RefundRequest, error) {
	refund, err := s.refundRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRefundNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, fmt.Errorf("failed to get refund request: %w", err)
	}

	if status == entity.RefundStatusPending {
		if refund.Status == entity.RefundStatusPending {
			return refund, nil
		}
		return nil, ErrRefundNotPending
	}

	if refund.Status != entity.RefundStatusPending {
		return nil, ErrRefundNotPending
	}
	if status != entity.RefundStatusApproved && status != entity.RefundStatusRejected {
		return nil, ErrInvalidRefundStatus
	}

	if err := s.refundRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update refund status: %w", err)
	}
	refund.Status = status
	refund.UpdatedAt = time.Now()

	if status == entity.RefundStatusApproved {
		if err := s.orderRepo.UpdateStatus(ctx, refund.OrderID, entity.OrderStatusRefunded); err != nil {
			logger.Error().Err(err).Int64("order_id", refund.OrderID).Msg("Failed to mark order refunded")
		}
	}
	if err := s.orderRepo.SetRefundRequest(ctx, refund.OrderID, refund); err != nil {
		logger.Error().Err(err).Int64("order_id", refund.OrderID).Msg("Failed to sync refund request on order")
	}

	s.notifyDecision(ctx, refund)

	metrics.RefundRequestsByStatus.WithLabelValues(string(status)).Inc()

	return refund, nil
}

// notifyDecision публикует событие REFUND_DECIDED для автора заявки.
// Решение уже сохранено, поэтому неудачная публикация логируется
// и не возвращается наверх
func (s *RefundService) notifyDecision(ctx context.Context, refund *entity.RefundRequest) {
	users, err := s.authClient.GetUsers(ctx, []string{refund.UserID})
	if err != nil {
		logger.Error().Err(err).Str("user_id", refund.UserID).Msg("Failed to resolve user for refund notification")
		return
	}

	user, ok := users[refund.UserID]
	if !ok {
		logger.Warn().Str("user_id", refund.UserID).Msg("Refund user unknown to auth service")
		return
	}

	event := entity.NotificationEvent{
		EventType: entity.EventRefundDecided,
		Email:     user.Email,
		Name:      user.Name,
		OrderID:   refund.OrderID,
		Status:    string(refund.Status),
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal refund notification")
		return
	}

	if err := s.publisher.PublishMessage(ctx, user.Email, data); err != nil {
		logger.Error().Err(err).
			Int64("order_id", refund.OrderID).
			Msg("Failed to publish refund notification")
	}
}
