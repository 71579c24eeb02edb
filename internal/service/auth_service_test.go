package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/pkg/config"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type mockUserRepo struct {
	users  map[int64]models.User
	nextID int64
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[int64]models.User)
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "gympoint-test"}
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewAuthService(repo, testJWTConfig(), validator.New(), zap.NewNop())

	user, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Admin",
		Email:    "admin@gympoint.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	session, err := svc.Login(context.Background(), LoginRequest{
		Email:    "admin@gympoint.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.User.ID)

	claims, err := svc.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "admin@gympoint.com", claims.Email)
}

func TestAuthServiceRegisterDuplicate(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewAuthService(repo, testJWTConfig(), validator.New(), zap.NewNop())

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Admin", Email: "admin@gympoint.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Name: "Admin", Email: "admin@gympoint.com", Password: "secret123"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "User already exists", appErr.Message)
}

func TestAuthServiceRegisterShortPassword(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, testJWTConfig(), validator.New(), zap.NewNop())

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Admin", Email: "admin@gympoint.com", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginBadCredentials(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewAuthService(repo, testJWTConfig(), validator.New(), zap.NewNop())

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Admin", Email: "admin@gympoint.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "admin@gympoint.com", Password: "wrong-pass"})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@gympoint.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestAuthServiceUpdateProfileAndPassword(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewAuthService(repo, testJWTConfig(), validator.New(), zap.NewNop())

	user, err := svc.Register(context.Background(), RegisterRequest{Name: "Admin", Email: "admin@gympoint.com", Password: "secret123"})
	require.NoError(t, err)

	name := "Head Coach"
	email := "coach@gympoint.com"
	updated, err := svc.Update(context.Background(), user.ID, UpdateUserRequest{
		Name:        &name,
		Email:       &email,
		OldPassword: "secret123",
		Password:    "stronger456",
	})
	require.NoError(t, err)
	assert.Equal(t, "Head Coach", updated.Name)
	assert.Equal(t, "coach@gympoint.com", updated.Email)

	// the old password no longer opens a session, the new one does
	_, err = svc.Login(context.Background(), LoginRequest{Email: email, Password: "secret123"})
	require.Error(t, err)
	session, err := svc.Login(context.Background(), LoginRequest{Email: email, Password: "stronger456"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)
}

func TestAuthServiceUpdateWrongOldPassword(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewAuthService(repo, testJWTConfig(), validator.New(), zap.NewNop())

	user, err := svc.Register(context.Background(), RegisterRequest{Name: "Admin", Email: "admin@gympoint.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), user.ID, UpdateUserRequest{
		OldPassword: "wrong-pass",
		Password:    "stronger456",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, "Password does not match", appErr.Message)
}

func TestAuthServiceUpdateEmailTaken(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewAuthService(repo, testJWTConfig(), validator.New(), zap.NewNop())

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Admin", Email: "admin@gympoint.com", Password: "secret123"})
	require.NoError(t, err)
	second, err := svc.Register(context.Background(), RegisterRequest{Name: "Coach", Email: "coach@gympoint.com", Password: "secret123"})
	require.NoError(t, err)

	taken := "admin@gympoint.com"
	_, err = svc.Update(context.Background(), second.ID, UpdateUserRequest{Email: &taken})
	require.Error(t, err)
	assert.Equal(t, "User already exists", appErrors.FromError(err).Message)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, testJWTConfig(), validator.New(), zap.NewNop())

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestAuthServiceValidateTokenWrongSecret(t *testing.T) {
	repo := &mockUserRepo{}
	issuer := NewAuthService(repo, testJWTConfig(), validator.New(), zap.NewNop())

	_, err := issuer.Register(context.Background(), RegisterRequest{Name: "Admin", Email: "admin@gympoint.com", Password: "secret123"})
	require.NoError(t, err)
	session, err := issuer.Login(context.Background(), LoginRequest{Email: "admin@gympoint.com", Password: "secret123"})
	require.NoError(t, err)

	other := NewAuthService(repo, config.JWTConfig{Secret: "different", Expiration: time.Hour}, validator.New(), zap.NewNop())
	_, err = other.ValidateToken(session.Token)
	require.Error(t, err)
}
