package service

import (
	"context"

	"bookstore/notification-service/internal/app/notification/entity"
)

// NotificationServiceInterface используется processor-слоем (Kafka consumer
// и cron scheduler)
type NotificationServiceInterface interface {
	ProcessEvent(ctx context.Context, event *entity.NotificationEvent) error
	RetryPending(ctx context.Context) error
}
