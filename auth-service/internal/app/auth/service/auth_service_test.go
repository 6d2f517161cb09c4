package service

import (
	"context"
	"testing"
	"time"

	"bookstore/auth-service/internal/app/auth/entity"
	"bookstore/auth-service/internal/app/auth/repository"
	"bookstore/auth-service/internal/app/auth/repository/mocks"
	"bookstore/auth-service/internal/app/auth/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAuthService() (*AuthService, *mocks.MockUserRepository, *mocks.MockTokenRepository, *util.JWTManager) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	jwtManager := util.NewJWTManager("test-secret-key", 15*time.Minute, 7*24*time.Hour)
	svc := NewAuthService(userRepo, tokenRepo, jwtManager)
	return svc, userRepo, tokenRepo, jwtManager
}

func TestRegister_Success(t *testing.T) {
	svc, userRepo, tokenRepo, _ := newAuthService()
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "new@example.com").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	tokenRepo.On("SaveRefreshToken", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Register(ctx, &entity.RegisterRequest{
		Email:    "new@example.com",
		Password: "secret-password",
		Name:     "Alice",
	})

	assert.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.User.Email)
	// Регистрация всегда создаёт покупателя
	assert.Equal(t, entity.UserTypeCustomer, resp.User.UserType)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.NotEqual(t, "secret-password", resp.User.PasswordHash)
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, userRepo, _, _ := newAuthService()
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "taken@example.com").Return(&entity.User{
		ID: uuid.New(), Email: "taken@example.com",
	}, nil)

	resp, err := svc.Register(ctx, &entity.RegisterRequest{
		Email:    "taken@example.com",
		Password: "secret-password",
		Name:     "Bob",
	})

	assert.ErrorIs(t, err, ErrUserExists)
	assert.Nil(t, resp)
	userRepo.AssertNotCalled(t, "Create", ctx, mock.Anything)
}

func TestRegister_StoresAddressWhenProvided(t *testing.T) {
	svc, userRepo, tokenRepo, _ := newAuthService()
	ctx := context.Background()

	var created *entity.User
	userRepo.On("GetByEmail", ctx, "new@example.com").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil).Run(func(args mock.Arguments) {
		created = args.Get(1).(*entity.User)
	})
	tokenRepo.On("SaveRefreshToken", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Register(ctx, &entity.RegisterRequest{
		Email:    "new@example.com",
		Password: "secret-password",
		Name:     "Alice",
		Address:  "Main St 1",
	})

	assert.NoError(t, err)
	assert.NotNil(t, created.Address)
	assert.Equal(t, "Main St 1", *created.Address)
}

func TestLogin_Success(t *testing.T) {
	svc, userRepo, tokenRepo, _ := newAuthService()
	ctx := context.Background()

	hash, _ := util.HashPassword("secret-password")
	user := &entity.User{
		ID: uuid.New(), Email: "user@example.com", PasswordHash: hash, Name: "Alice",
		UserType: entity.UserTypeCustomer,
	}

	userRepo.On("GetByEmail", ctx, "user@example.com").Return(user, nil)
	tokenRepo.On("SaveRefreshToken", ctx, user.ID, mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Login(ctx, &entity.LoginRequest{
		Email: "user@example.com", Password: "secret-password",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, userRepo, _, _ := newAuthService()
	ctx := context.Background()

	hash, _ := util.HashPassword("secret-password")
	userRepo.On("GetByEmail", ctx, "user@example.com").Return(&entity.User{
		ID: uuid.New(), Email: "user@example.com", PasswordHash: hash,
	}, nil)

	resp, err := svc.Login(ctx, &entity.LoginRequest{
		Email: "user@example.com", Password: "wrong-password",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, resp)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, userRepo, _, _ := newAuthService()
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(ctx, &entity.LoginRequest{
		Email: "ghost@example.com", Password: "whatever",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokens_RotatesToken(t *testing.T) {
	svc, userRepo, tokenRepo, _ := newAuthService()
	ctx := context.Background()

	userID := uuid.New()
	tokenRepo.On("GetRefreshToken", ctx, "old-refresh-token").Return(&entity.RefreshToken{
		UserID: userID, Token: "old-refresh-token", ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	tokenRepo.On("DeleteRefreshToken", ctx, "old-refresh-token").Return(nil)
	userRepo.On("GetByID", ctx, userID).Return(&entity.User{
		ID: userID, Email: "user@example.com", UserType: entity.UserTypeCustomer,
	}, nil)
	tokenRepo.On("SaveRefreshToken", ctx, userID, mock.Anything, mock.Anything).Return(nil)

	pair, err := svc.RefreshTokens(ctx, "old-refresh-token")

	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, "old-refresh-token", pair.RefreshToken)
	tokenRepo.AssertCalled(t, "DeleteRefreshToken", ctx, "old-refresh-token")
}

func TestRefreshTokens_UnknownToken(t *testing.T) {
	svc, _, tokenRepo, _ := newAuthService()
	ctx := context.Background()

	tokenRepo.On("GetRefreshToken", ctx, "unknown").Return(nil, repository.ErrTokenNotFound)

	pair, err := svc.RefreshTokens(ctx, "unknown")

	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.Nil(t, pair)
}

func TestLogout_BlacklistsAccessToken(t *testing.T) {
	svc, _, tokenRepo, jwtManager := newAuthService()
	ctx := context.Background()

	userID := uuid.New()
	accessToken, _ := jwtManager.GenerateAccessToken(userID, "user@example.com", entity.UserTypeCustomer)

	tokenRepo.On("AddToBlacklist", ctx, accessToken, mock.Anything).Return(nil)
	tokenRepo.On("DeleteUserRefreshTokens", ctx, userID).Return(nil)

	err := svc.Logout(ctx, userID, accessToken)

	assert.NoError(t, err)
	tokenRepo.AssertCalled(t, "AddToBlacklist", ctx, accessToken, mock.Anything)
	tokenRepo.AssertCalled(t, "DeleteUserRefreshTokens", ctx, userID)
}

func TestLogout_InvalidTokenIsNoOp(t *testing.T) {
	svc, _, tokenRepo, _ := newAuthService()
	ctx := context.Background()

	err := svc.Logout(ctx, uuid.New(), "garbage-token")

	assert.NoError(t, err)
	tokenRepo.AssertNotCalled(t, "AddToBlacklist", ctx, mock.Anything, mock.Anything)
}

func TestValidateToken_Blacklisted(t *testing.T) {
	svc, _, tokenRepo, jwtManager := newAuthService()
	ctx := context.Background()

	accessToken, _ := jwtManager.GenerateAccessToken(uuid.New(), "user@example.com", entity.UserTypeCustomer)
	tokenRepo.On("IsBlacklisted", ctx, accessToken).Return(true, nil)

	claims, err := svc.ValidateToken(ctx, accessToken)

	assert.ErrorIs(t, err, util.ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestValidateToken_Success(t *testing.T) {
	svc, _, tokenRepo, jwtManager := newAuthService()
	ctx := context.Background()

	userID := uuid.New()
	accessToken, _ := jwtManager.GenerateAccessToken(userID, "user@example.com", entity.UserTypeSales)
	tokenRepo.On("IsBlacklisted", ctx, accessToken).Return(false, nil)

	claims, err := svc.ValidateToken(ctx, accessToken)

	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, entity.UserTypeSales, claims.UserType)
}

func TestUpdateProfile_Success(t *testing.T) {
	svc, userRepo, _, _ := newAuthService()
	ctx := context.Background()

	userID := uuid.New()
	name := "New Name"
	userRepo.On("UpdateProfile", ctx, userID, &name, (*string)(nil)).Return(nil)
	userRepo.On("GetByID", ctx, userID).Return(&entity.User{ID: userID, Name: name}, nil)

	user, err := svc.UpdateProfile(ctx, userID, &entity.UpdateProfileRequest{Name: &name})

	assert.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
}
