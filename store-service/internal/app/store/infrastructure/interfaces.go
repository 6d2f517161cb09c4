package infrastructure

import "context"

// UserIdentity - часть записи пользователя auth-service, нужная
// для ленты отзывов и рассылки уведомлений
type UserIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthServiceClient получает данные пользователей из auth-service
type AuthServiceClient interface {
	GetUsers(ctx context.Context, userIDs []string) (map[string]UserIdentity, error)
}
