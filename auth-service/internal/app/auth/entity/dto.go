package entity

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Address  string `json:"address" validate:"omitempty,max=500"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

type UpdateUserTypeRequest struct {
	UserType string `json:"user_type" validate:"required,oneof=customer product sales"`
}

type UpdateAddressRequest struct {
	Address string `json:"address" validate:"required,max=500"`
}

// AuthResponse возвращается при регистрации и входе
type AuthResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// UserIdentity - компактное представление пользователя для batch-запросов
// от store-service (имена в отзывах, email для уведомлений)
type UserIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LookupRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=500"`
}

type LookupResponse struct {
	Users []UserIdentity `json:"users"`
}
