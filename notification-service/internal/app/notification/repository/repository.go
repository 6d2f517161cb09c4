package repository

import (
	"context"
	"errors"

	"bookstore/notification-service/internal/app/notification/entity"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetPending(ctx context.Context, limit int) ([]entity.Notification, error)
	MarkSent(ctx context.Context, id string) error
	RecordFailure(ctx context.Context, id string, lastError string) error
	MarkFailed(ctx context.Context, id string, lastError string) error
}
