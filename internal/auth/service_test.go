package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stayhub/internal/shared/config"
)

func setupAuthService(t *testing.T) Service {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Account{}))

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:       "test-secret",
			JWTExpiresIn: time.Hour,
		},
	}
	return NewService(NewRepository(db), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	service := setupAuthService(t)

	registered, err := service.Register(context.Background(), &RegisterRequest{
		FullName: "Ada Guest",
		Email:    "ada@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, string(RoleCustomer), registered.Account.Role)
	assert.NotEmpty(t, registered.AccessToken)
	assert.Equal(t, int64(3600), registered.ExpiresIn)

	loggedIn, err := service.Login(context.Background(), &LoginRequest{
		Email:    "ada@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.Account.ID, loggedIn.Account.ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service := setupAuthService(t)

	_, err := service.Register(context.Background(), &RegisterRequest{
		FullName: "Ada Guest", Email: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = service.Register(context.Background(), &RegisterRequest{
		FullName: "Other Guest", Email: "ada@example.com", Password: "different",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	service := setupAuthService(t)

	_, err := service.Register(context.Background(), &RegisterRequest{
		FullName: "Ada Guest", Email: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), &LoginRequest{
		Email: "ada@example.com", Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown accounts look the same as wrong passwords.
	_, err = service.Login(context.Background(), &LoginRequest{
		Email: "nobody@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	service := setupAuthService(t)

	registered, err := service.Register(context.Background(), &RegisterRequest{
		FullName: "Ada Guest", Email: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	claims, err := service.ValidateToken(registered.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.Account.ID, claims.AccountID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, string(RoleCustomer), claims.Role)
	assert.Equal(t, "access", claims.Type)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	service := setupAuthService(t)

	_, err := service.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
