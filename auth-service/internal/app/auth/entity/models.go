package entity

import (
	"time"

	"github.com/google/uuid"
)

// Типы пользователей магазина
const (
	UserTypeCustomer = "customer" // Покупатель
	UserTypeProduct  = "product"  // Менеджер по товарам (каталог, модерация)
	UserTypeSales    = "sales"    // Менеджер по продажам (заказы, возвраты)
)

// User представляет пользователя в системе
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"` // не возвращаем в JSON
	Name         string    `json:"name" gorm:"not null"`
	UserType     string    `json:"user_type" gorm:"not null;default:customer"`
	Address      *string   `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RefreshToken хранит refresh токены для обновления JWT
type RefreshToken struct {
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenPair содержит access и refresh токены
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // время жизни access token в секундах
}
