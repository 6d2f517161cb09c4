package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Типы событий уведомлений из Kafka
const (
	EventDiscountApplied = "DISCOUNT_APPLIED"
	EventRefundDecided   = "REFUND_DECIDED"
)

// NotificationEvent - событие уведомления, публикуемое store-service
type NotificationEvent struct {
	EventType string    `json:"event_type"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	BookTitle string    `json:"book_title,omitempty"`
	NewPrice  float64   `json:"new_price,omitempty"`
	OrderID   int64     `json:"order_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Статусы уведомления. failed - терминальный статус после исчерпания
// лимита попыток, такие письма больше не повторяются
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// Notification - запись об отправке письма. Неотправленные письма
// сохраняются со статусом pending и повторяются по расписанию
type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	EventType string             `json:"event_type" bson:"event_type"`
	Email     string             `json:"email" bson:"email"`
	Subject   string             `json:"subject" bson:"subject"`
	Body      string             `json:"body" bson:"body"`
	Status    string             `json:"status" bson:"status"`
	Attempts  int                `json:"attempts" bson:"attempts"`
	LastError string             `json:"last_error,omitempty" bson:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
