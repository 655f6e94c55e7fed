package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"resort/internal/domain"
	"resort/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func staffUser(t *testing.T, password string, active bool) *domain.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           10,
		Email:        "desk@resort.test",
		PasswordHash: string(hashed),
		Role:         domain.RoleReceptionist,
		IsActive:     active,
	}
}

func TestService_Login_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("GetByEmail", mock.Anything, "desk@resort.test").Return(staffUser(t, "password123", true), nil)
	jwtSvc.On("GenerateToken", int64(10), "receptionist").Return("login-token", nil)

	service := NewService(userRepo, jwtSvc, nil)
	user, token, err := service.Login(context.Background(), LoginRequest{Email: " Desk@Resort.test ", Password: "password123"})

	require.NoError(t, err)
	assert.Equal(t, "login-token", token)
	assert.Empty(t, user.PasswordHash)
	userRepo.AssertExpectations(t)
	jwtSvc.AssertExpectations(t)
}

func TestService_Login_Rejections(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("GetByEmail", mock.Anything, "nobody@resort.test").Return(nil, repository.ErrNotFound)
	userRepo.On("GetByEmail", mock.Anything, "desk@resort.test").Return(staffUser(t, "password123", true), nil).Once()
	userRepo.On("GetByEmail", mock.Anything, "desk@resort.test").Return(staffUser(t, "password123", false), nil).Once()

	service := NewService(userRepo, jwtSvc, nil)
	ctx := context.Background()

	_, _, err := service.Login(ctx, LoginRequest{Email: "nobody@resort.test", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = service.Login(ctx, LoginRequest{Email: "desk@resort.test", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = service.Login(ctx, LoginRequest{Email: "desk@resort.test", Password: "password123"})
	assert.ErrorIs(t, err, ErrAccountDisabled)

	jwtSvc.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

func TestService_CreateStaff(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("ExistsByEmail", mock.Anything, "books@resort.test").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleAccountant &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("ledger-pass")) == nil
	})).Return(nil)
	userRepo.On("ExistsByEmail", mock.Anything, "taken@resort.test").Return(true, nil)

	service := NewService(userRepo, jwtSvc, nil)
	user, err := service.CreateStaff(context.Background(), CreateStaffRequest{
		Email: "books@resort.test", Password: "ledger-pass", FullName: "Thu Ha", Role: domain.RoleAccountant,
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.Empty(t, user.PasswordHash)

	_, err = service.CreateStaff(context.Background(), CreateStaffRequest{Email: "taken@resort.test", Password: "whatever1", FullName: "X Y", Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	userRepo.AssertExpectations(t)
}
