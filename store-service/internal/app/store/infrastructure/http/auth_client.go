package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bookstore/store-service/internal/app/store/infrastructure"
)

// AuthClient ходит на внутренний batch-эндпоинт auth-service
// за именами и email пользователей
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type lookupRequest struct {
	IDs []string `json:"ids"`
}

type lookupResponse struct {
	Users []infrastructure.UserIdentity `json:"users"`
}

// GetUsers возвращает карточки по списку id. Неизвестные id
// просто отсутствуют в результирующей карте
func (c *AuthClient) GetUsers(ctx context.Context, userIDs []string) (map[string]infrastructure.UserIdentity, error) {
	if len(userIDs) == 0 {
		return map[string]infrastructure.UserIdentity{}, nil
	}

	body, err := json.Marshal(lookupRequest{IDs: userIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lookup request: %w", err)
	}

	url := fmt.Sprintf("%s/internal/users/lookup", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code from auth service: %d", resp.StatusCode)
	}

	var lookup lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	users := make(map[string]infrastructure.UserIdentity, len(lookup.Users))
	for _, u := range lookup.Users {
		users[u.ID] = u
	}

	return users, nil
}
