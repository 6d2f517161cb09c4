package service

import (
	"context"
	"testing"

	"bookstore/auth-service/internal/app/auth/entity"
	"bookstore/auth-service/internal/app/auth/repository"
	"bookstore/auth-service/internal/app/auth/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newUserService() (*UserService, *mocks.MockUserRepository) {
	userRepo := new(mocks.MockUserRepository)
	return NewUserService(userRepo), userRepo
}

func TestUpdateUserType_Success(t *testing.T) {
	svc, userRepo := newUserService()
	ctx := context.Background()

	userID := uuid.New()
	userRepo.On("UpdateUserType", ctx, userID, entity.UserTypeSales).Return(nil)
	userRepo.On("GetByID", ctx, userID).Return(&entity.User{ID: userID, UserType: entity.UserTypeSales}, nil)

	user, err := svc.UpdateUserType(ctx, userID, entity.UserTypeSales)

	assert.NoError(t, err)
	assert.Equal(t, entity.UserTypeSales, user.UserType)
}

func TestUpdateUserType_InvalidType(t *testing.T) {
	svc, userRepo := newUserService()
	ctx := context.Background()

	user, err := svc.UpdateUserType(ctx, uuid.New(), "admin")

	assert.ErrorIs(t, err, ErrInvalidUserType)
	assert.Nil(t, user)
	userRepo.AssertNotCalled(t, "UpdateUserType", ctx, mock.Anything, mock.Anything)
}

func TestUpdateUserType_UserNotFound(t *testing.T) {
	svc, userRepo := newUserService()
	ctx := context.Background()

	userID := uuid.New()
	userRepo.On("UpdateUserType", ctx, userID, entity.UserTypeProduct).Return(repository.ErrUserNotFound)

	_, err := svc.UpdateUserType(ctx, userID, entity.UserTypeProduct)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateAddress_Success(t *testing.T) {
	svc, userRepo := newUserService()
	ctx := context.Background()

	userID := uuid.New()
	address := "Main St 1"
	userRepo.On("UpdateAddress", ctx, userID, address).Return(nil)
	userRepo.On("GetByID", ctx, userID).Return(&entity.User{ID: userID, Address: &address}, nil)

	user, err := svc.UpdateAddress(ctx, userID, address)

	assert.NoError(t, err)
	assert.Equal(t, address, *user.Address)
}

func TestLookupUsers_SkipsInvalidIDs(t *testing.T) {
	svc, userRepo := newUserService()
	ctx := context.Background()

	validID := uuid.New()
	userRepo.On("GetByIDs", ctx, []uuid.UUID{validID}).Return([]entity.User{
		{ID: validID, Name: "Alice", Email: "alice@example.com"},
	}, nil)

	identities, err := svc.LookupUsers(ctx, []string{"not-a-uuid", validID.String()})

	assert.NoError(t, err)
	assert.Len(t, identities, 1)
	assert.Equal(t, validID.String(), identities[0].ID)
	assert.Equal(t, "Alice", identities[0].Name)
}

func TestLookupUsers_AllInvalid(t *testing.T) {
	svc, userRepo := newUserService()
	ctx := context.Background()

	identities, err := svc.LookupUsers(ctx, []string{"x", "y"})

	assert.NoError(t, err)
	assert.Empty(t, identities)
	userRepo.AssertNotCalled(t, "GetByIDs", ctx, mock.Anything)
}

func TestLookupUsers_UnknownIDsOmitted(t *testing.T) {
	svc, userRepo := newUserService()
	ctx := context.Background()

	knownID := uuid.New()
	unknownID := uuid.New()
	userRepo.On("GetByIDs", ctx, []uuid.UUID{knownID, unknownID}).Return([]entity.User{
		{ID: knownID, Name: "Alice", Email: "alice@example.com"},
	}, nil)

	identities, err := svc.LookupUsers(ctx, []string{knownID.String(), unknownID.String()})

	assert.NoError(t, err)
	assert.Len(t, identities, 1)
}
