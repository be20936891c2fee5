package user

import (
	"context"
	"testing"
	"time"

	"dojobook/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, name, email, passwordHash, role string, dateOfBirth *time.Time) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash, role, dateOfBirth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

const testSecret = "test-secret"

func TestService_Register(t *testing.T) {
	t.Run("new member with date of birth", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("EmailExists", mock.Anything, "mia@test.com").Return(false, nil)
		repo.On("Create", mock.Anything, "Mia", "mia@test.com", mock.Anything, "member",
			mock.MatchedBy(func(dob *time.Time) bool {
				return dob != nil && dob.Format("2006-01-02") == "2012-03-15"
			})).Return(&User{ID: 1, Name: "Mia", Email: "mia@test.com", Role: "member"}, nil)

		svc := NewService(repo, testSecret)
		u, access, refresh, err := svc.Register(context.Background(), RegisterRequest{
			Name: "Mia", Email: "mia@test.com", Password: "password123", DateOfBirth: "2012-03-15",
		})

		require.NoError(t, err)
		assert.Equal(t, 1, u.ID)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
	})

	t.Run("missing date of birth is allowed", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("EmailExists", mock.Anything, "mia@test.com").Return(false, nil)
		repo.On("Create", mock.Anything, "Mia", "mia@test.com", mock.Anything, "member", (*time.Time)(nil)).
			Return(&User{ID: 1, Name: "Mia", Email: "mia@test.com", Role: "member"}, nil)

		svc := NewService(repo, testSecret)
		_, _, _, err := svc.Register(context.Background(), RegisterRequest{
			Name: "Mia", Email: "mia@test.com", Password: "password123",
		})
		require.NoError(t, err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("EmailExists", mock.Anything, "mia@test.com").Return(true, nil)

		svc := NewService(repo, testSecret)
		u, _, _, err := svc.Register(context.Background(), RegisterRequest{
			Name: "Mia", Email: "mia@test.com", Password: "password123",
		})

		assert.Nil(t, u)
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestService_Login(t *testing.T) {
	hash, _ := auth.HashPassword("password123")

	t.Run("valid credentials", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByEmail", mock.Anything, "mia@test.com").Return(&User{
			ID: 1, Email: "mia@test.com", PasswordHash: hash, Role: "member",
		}, nil)

		svc := NewService(repo, testSecret)
		u, access, _, err := svc.Login(context.Background(), LoginRequest{
			Email: "mia@test.com", Password: "password123",
		})

		require.NoError(t, err)
		assert.Equal(t, 1, u.ID)

		claims, err := auth.ValidateToken(access, testSecret)
		require.NoError(t, err)
		assert.Equal(t, 1, claims.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByEmail", mock.Anything, "mia@test.com").Return(&User{
			ID: 1, Email: "mia@test.com", PasswordHash: hash,
		}, nil)

		svc := NewService(repo, testSecret)
		_, _, _, err := svc.Login(context.Background(), LoginRequest{
			Email: "mia@test.com", Password: "nope",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByEmail", mock.Anything, "ghost@test.com").Return(nil, ErrUserNotFound)

		svc := NewService(repo, testSecret)
		_, _, _, err := svc.Login(context.Background(), LoginRequest{
			Email: "ghost@test.com", Password: "password123",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_RefreshToken(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("FindByID", mock.Anything, 1).Return(&User{ID: 1, Email: "mia@test.com", Role: "member"}, nil)
	svc := NewService(repo, testSecret)

	refreshToken, err := auth.GenerateRefreshToken(1, "mia@test.com", "member", testSecret)
	require.NoError(t, err)

	newAccess, u, err := svc.RefreshToken(context.Background(), refreshToken)
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)

	claims, err := auth.ValidateToken(newAccess, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "access", claims.TokenType)
}
