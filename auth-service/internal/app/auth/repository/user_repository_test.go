package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"bookstore/auth-service/internal/app/auth/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UserRepositoryTestSuite тестовый suite для PostgreSQL repository
type UserRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  UserRepository
	sqlDB *sql.DB
}

func TestUserRepositorySuite(t *testing.T) {
	suite.Run(t, new(UserRepositoryTestSuite))
}

func (s *UserRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewUserRepository(s.db)
}

func (s *UserRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

func userRows(users ...entity.User) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "user_type", "address", "created_at"})
	for _, u := range users {
		rows.AddRow(u.ID, u.Email, u.PasswordHash, u.Name, u.UserType, u.Address, u.CreatedAt)
	}
	return rows
}

// ===================== GetByID Tests =====================

func (s *UserRepositoryTestSuite) TestGetByID_Success() {
	ctx := context.Background()
	userID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(userRows(entity.User{
			ID: userID, Email: "user@example.com", PasswordHash: "hash",
			Name: "Alice", UserType: entity.UserTypeCustomer, CreatedAt: time.Now(),
		}))

	user, err := s.repo.GetByID(ctx, userID)

	s.NoError(err)
	s.NotNil(user)
	s.Equal(userID, user.ID)
	s.Equal("user@example.com", user.Email)
	s.Equal(entity.UserTypeCustomer, user.UserType)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *UserRepositoryTestSuite) TestGetByID_NotFound() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnError(gorm.ErrRecordNotFound)

	user, err := s.repo.GetByID(ctx, uuid.New())

	s.ErrorIs(err, ErrUserNotFound)
	s.Nil(user)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== GetByEmail Tests =====================

func (s *UserRepositoryTestSuite) TestGetByEmail_Success() {
	ctx := context.Background()
	userID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(userRows(entity.User{
			ID: userID, Email: "user@example.com", Name: "Alice", UserType: entity.UserTypeCustomer,
		}))

	user, err := s.repo.GetByEmail(ctx, "user@example.com")

	s.NoError(err)
	s.Equal(userID, user.ID)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *UserRepositoryTestSuite) TestGetByEmail_NotFound() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnError(gorm.ErrRecordNotFound)

	user, err := s.repo.GetByEmail(ctx, "ghost@example.com")

	s.ErrorIs(err, ErrUserNotFound)
	s.Nil(user)
}

// ===================== GetByIDs Tests =====================

func (s *UserRepositoryTestSuite) TestGetByIDs_PartialMatch() {
	ctx := context.Background()
	knownID := uuid.New()
	unknownID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id IN`)).
		WillReturnRows(userRows(entity.User{
			ID: knownID, Email: "user@example.com", Name: "Alice", UserType: entity.UserTypeCustomer,
		}))

	users, err := s.repo.GetByIDs(ctx, []uuid.UUID{knownID, unknownID})

	s.NoError(err)
	s.Len(users, 1)
	s.Equal(knownID, users[0].ID)
}

// ===================== Update Tests =====================

func (s *UserRepositoryTestSuite) TestUpdateUserType_Success() {
	ctx := context.Background()
	userID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "user_type"=$1 WHERE id = $2`)).
		WithArgs(entity.UserTypeSales, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := s.repo.UpdateUserType(ctx, userID, entity.UserTypeSales)

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *UserRepositoryTestSuite) TestUpdateUserType_NotFound() {
	ctx := context.Background()
	userID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "user_type"=$1 WHERE id = $2`)).
		WithArgs(entity.UserTypeSales, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	err := s.repo.UpdateUserType(ctx, userID, entity.UserTypeSales)

	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserRepositoryTestSuite) TestUpdateProfile_NoFieldsIsNoOp() {
	ctx := context.Background()

	err := s.repo.UpdateProfile(ctx, uuid.New(), nil, nil)

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *UserRepositoryTestSuite) TestUpdateAddress_Success() {
	ctx := context.Background()
	userID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "address"=$1 WHERE id = $2`)).
		WithArgs("Main St 1", userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := s.repo.UpdateAddress(ctx, userID, "Main St 1")

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}
