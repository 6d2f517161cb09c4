package util

import (
	"context"
	"time"
)

// CategoryCache кеширует список категорий книг
type CategoryCache interface {
	SetCategories(ctx context.Context, categories []string, ttl time.Duration) error
	GetCategories(ctx context.Context) ([]string, error)
	DeleteCategories(ctx context.Context) error
	Close() error
}

// MessagePublisher абстрагирует Kafka producer для внедрения зависимостей
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
