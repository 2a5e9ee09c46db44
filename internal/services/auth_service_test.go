// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimall/backend/internal/models"
	"github.com/minimall/backend/internal/utils"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	cfg := testConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	return NewAuthService(openTestDB(t), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	service := newAuthService(t)

	user, err := service.Register(&RegisterRequest{
		Username: "new_user",
		Email:    "new@example.com",
		Password: "Sup3rSecret!",
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleCustomer, user.Role)
	assert.NotEqual(t, "Sup3rSecret!", user.PasswordHash)

	loggedIn, tokens, err := service.Login(&LoginRequest{
		Email:    "new@example.com",
		Password: "Sup3rSecret!",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	refreshed, err := service.Refresh(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	service := newAuthService(t)

	_, err := service.Register(&RegisterRequest{
		Username: "taken",
		Email:    "taken@example.com",
		Password: "Sup3rSecret!",
	})
	require.NoError(t, err)

	_, err = service.Register(&RegisterRequest{
		Username: "taken",
		Email:    "other@example.com",
		Password: "Sup3rSecret!",
	})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = service.Register(&RegisterRequest{
		Username: "someone_else",
		Email:    "taken@example.com",
		Password: "Sup3rSecret!",
	})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	service := newAuthService(t)

	_, err := service.Register(&RegisterRequest{
		Username: "weakling",
		Email:    "weak@example.com",
		Password: "password",
	})
	assert.Error(t, err)
}

func TestLoginFailures(t *testing.T) {
	service := newAuthService(t)

	_, err := service.Register(&RegisterRequest{
		Username: "locked_out",
		Email:    "locked@example.com",
		Password: "Sup3rSecret!",
	})
	require.NoError(t, err)

	_, _, err = service.Login(&LoginRequest{
		Email:    "locked@example.com",
		Password: "WrongPass1!",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = service.Login(&LoginRequest{
		Email:    "nobody@example.com",
		Password: "Sup3rSecret!",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsSuspendedAccount(t *testing.T) {
	cfg := testConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	db := openTestDB(t)
	service := NewAuthService(db, cfg)

	user, err := service.Register(&RegisterRequest{
		Username: "suspended",
		Email:    "suspended@example.com",
		Password: "Sup3rSecret!",
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		UpdateColumn("status", models.UserStatusSuspended).Error)

	_, _, err = service.Login(&LoginRequest{
		Email:    "suspended@example.com",
		Password: "Sup3rSecret!",
	})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestChangePassword(t *testing.T) {
	service := newAuthService(t)

	user, err := service.Register(&RegisterRequest{
		Username: "rotator",
		Email:    "rotator@example.com",
		Password: "Sup3rSecret!",
	})
	require.NoError(t, err)

	err = service.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword: "WrongOld1!",
		NewPassword: "An0therSecret!",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = service.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword: "Sup3rSecret!",
		NewPassword: "An0therSecret!",
	})
	require.NoError(t, err)

	_, _, err = service.Login(&LoginRequest{
		Email:    "rotator@example.com",
		Password: "An0therSecret!",
	})
	assert.NoError(t, err)
}
