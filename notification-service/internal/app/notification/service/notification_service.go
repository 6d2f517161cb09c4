package service

import (
	"context"
	"fmt"

	"bookstore/notification-service/internal/app/notification/entity"
	"bookstore/notification-service/internal/app/notification/repository"
	"bookstore/pkg/logger"
	"bookstore/pkg/metrics"
)

// NotificationService превращает события из Kafka в письма. Письмо, которое
// не удалось отправить, сохраняется со статусом pending и повторяется
// cron-задачей до maxAttempts попыток, после чего помечается failed
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	emailSender      EmailSender
	maxAttempts      int
}

func NewNotificationService(notificationRepo repository.NotificationRepository, emailSender EmailSender, maxAttempts int) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		emailSender:      emailSender,
		maxAttempts:      maxAttempts,
	}
}

// ProcessEvent обрабатывает одно событие: формирует письмо и пытается
// отправить. Неудачная отправка не является ошибкой обработки - письмо
// уходит в очередь повторов
func (s *NotificationService) ProcessEvent(ctx context.Context, event *entity.NotificationEvent) error {
	subject, body, err := composeEmail(event)
	if err != nil {
		return err
	}

	notification := &entity.Notification{
		EventType: event.EventType,
		Email:     event.Email,
		Subject:   subject,
		Body:      body,
		Status:    entity.NotificationStatusSent,
	}

	if sendErr := s.emailSender.Send(event.Email, subject, body); sendErr != nil {
		logger.Warn().Err(sendErr).
			Str("email", event.Email).
			Str("event_type", event.EventType).
			Msg("Failed to send email, queueing for retry")

		notification.Status = entity.NotificationStatusPending
		notification.Attempts = 1
		notification.LastError = sendErr.Error()
		metrics.NotificationsSent.WithLabelValues(event.EventType, "failed").Inc()
	} else {
		metrics.NotificationsSent.WithLabelValues(event.EventType, "sent").Inc()
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	return nil
}

// RetryPending повторяет отправку накопившихся pending писем.
// Исчерпавшие лимит попыток письма получают терминальный статус failed
// и в следующие выборки не попадают
func (s *NotificationService) RetryPending(ctx context.Context) error {
	pending, err := s.notificationRepo.GetPending(ctx, 100)
	if err != nil {
		return fmt.Errorf("failed to load pending notifications: %w", err)
	}

	for _, n := range pending {
		id := n.ID.Hex()

		// Письмо на пределе попыток не отправляем повторно
		if n.Attempts >= s.maxAttempts {
			if err := s.notificationRepo.MarkFailed(ctx, id, n.LastError); err != nil {
				logger.Error().Err(err).Str("id", id).Msg("Failed to mark notification failed")
			}
			continue
		}

		if sendErr := s.emailSender.Send(n.Email, n.Subject, n.Body); sendErr != nil {
			if n.Attempts+1 >= s.maxAttempts {
				logger.Warn().Str("id", id).Str("email", n.Email).
					Int("attempts", n.Attempts+1).
					Msg("Giving up on notification after max attempts")
				if err := s.notificationRepo.MarkFailed(ctx, id, sendErr.Error()); err != nil {
					logger.Error().Err(err).Str("id", id).Msg("Failed to mark notification failed")
				}
			} else if err := s.notificationRepo.RecordFailure(ctx, id, sendErr.Error()); err != nil {
				logger.Error().Err(err).Str("id", id).Msg("Failed to record notification failure")
			}
			metrics.NotificationsSent.WithLabelValues(n.EventType, "failed").Inc()
			continue
		}

		if err := s.notificationRepo.MarkSent(ctx, id); err != nil {
			logger.Error().Err(err).Str("id", id).Msg("Failed to mark notification sent")
			continue
		}
		metrics.NotificationsSent.WithLabelValues(n.EventType, "sent").Inc()
	}

	return nil
}

// composeEmail формирует тему и тело письма по типу события
func composeEmail(event *entity.NotificationEvent) (string, string, error) {
	switch event.EventType {
	case entity.EventDiscountApplied:
		subject := fmt.Sprintf("Price drop: %s", event.BookTitle)
		body := fmt.Sprintf(
			"<p>Hi %s,</p><p>A book from your wishlist, <b>%s</b>, is now available for <b>%.2f</b>.</p>",
			event.Name, event.BookTitle, event.NewPrice,
		)
		return subject, body, nil
	case entity.EventRefundDecided:
		subject := fmt.Sprintf("Refund request update for order #%d", event.OrderID)
		body := fmt.Sprintf(
			"<p>Hi %s,</p><p>Your refund request for order <b>#%d</b> has been <b>%s</b>.</p>",
			event.Name, event.OrderID, event.Status,
		)
		return subject, body, nil
	default:
		return "", "", fmt.Errorf("unknown event type: %s", event.EventType)
	}
}
