package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book - запись каталога. Stock - целочисленный остаток на складе,
// никогда не опускается ниже нуля
type Book struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title         string             `json:"title" bson:"title"`
	Author        string             `json:"author" bson:"author"`
	Description   string             `json:"description" bson:"description"`
	PublishedYear int                `json:"published_year" bson:"published_year"`
	Image         string             `json:"image" bson:"image"`
	Price         float64            `json:"price" bson:"price"`
	Stock         int                `json:"stock" bson:"stock"`
	Category      string             `json:"category" bson:"category"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// BookCategories - фиксированный набор допустимых категорий
var BookCategories = []string{
	"fiction", "non-fiction", "science", "history", "children",
	"biography", "fantasy", "mystery", "romance", "other",
}

type OrderStatus string

const (
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusInTransit       OrderStatus = "in-transit"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusRefundRequested OrderStatus = "refund-requested"
	OrderStatusRefunded        OrderStatus = "refunded"
)

// OrderItem - снапшот книги на момент покупки. Последующие изменения
// цены или названия не затрагивают существующие заказы
type OrderItem struct {
	BookID   string  `json:"book_id" bson:"book_id"`
	Title    string  `json:"title" bson:"title"`
	Author   string  `json:"author" bson:"author"`
	Price    float64 `json:"price" bson:"price"`
	Image    string  `json:"image" bson:"image"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

type ShippingInfo struct {
	Name       string `json:"name" bson:"name"`
	Address    string `json:"address" bson:"address"`
	City       string `json:"city" bson:"city"`
	PostalCode string `json:"postal_code" bson:"postal_code"`
	Country    string `json:"country" bson:"country"`
	Phone      string `json:"phone" bson:"phone"`
	Email      string `json:"email" bson:"email"`
}

// Order помимо id документа Mongo несет уникальный числовой OrderID
// (выделяется из коллекции counters); комментарии, оценки и заявки
// на возврат ссылаются на заказ по этому номеру
type Order struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderID       int64              `json:"order_id" bson:"order_id"`
	OrderNumber   string             `json:"order_number" bson:"order_number"`
	UserID        string             `json:"user_id" bson:"user_id"`
	Items         []OrderItem        `json:"items" bson:"items"`
	ShippingInfo  ShippingInfo       `json:"shipping_info" bson:"shipping_info"`
	Total         float64            `json:"total" bson:"total"`
	Status        OrderStatus        `json:"status" bson:"status"`
	RefundRequest *RefundRequest     `json:"refund_request,omitempty" bson:"refund_request,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

// Comment создается неодобренным; в публичную ленту попадают
// только одобренные комментарии
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookID    string             `json:"book_id" bson:"book_id"`
	UserID    string             `json:"user_id" bson:"user_id"`
	OrderID   int64              `json:"order_id" bson:"order_id"`
	Text      string             `json:"text" bson:"text"`
	Approved  bool               `json:"approved" bson:"approved"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type Rating struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookID    string             `json:"book_id" bson:"book_id"`
	UserID    string             `json:"user_id" bson:"user_id"`
	OrderID   int64              `json:"order_id" bson:"order_id"`
	Rating    int                `json:"rating" bson:"rating"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type Wishlist struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID  string             `json:"user_id" bson:"user_id"`
	BookID  string             `json:"book_id" bson:"book_id"`
	AddedAt time.Time          `json:"added_at" bson:"added_at"`
}

type RefundStatus string

const (
	RefundStatusPending  RefundStatus = "pending"
	RefundStatusApproved RefundStatus = "approved"
	RefundStatusRejected RefundStatus = "rejected"
)

// RefundRequest - заявка на возврат для пары (заказ, пользователь).
// Статусы approved и rejected терминальные
type RefundRequest struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderID   int64              `json:"order_id" bson:"order_id"`
	UserID    string             `json:"user_id" bson:"user_id"`
	Reason    string             `json:"reason" bson:"reason"`
	Status    RefundStatus       `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Типы событий уведомлений, публикуемых в Kafka для notification-service
const (
	EventDiscountApplied = "DISCOUNT_APPLIED"
	EventRefundDecided   = "REFUND_DECIDED"
)

// NotificationEvent - формат сообщения для notification-service.
// Одно событие соответствует ровно одной попытке отправки письма
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
