package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"studyverse/internal/config"
	"studyverse/internal/models"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret-that-is-long-enough!",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func TestIssueTokens_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)
	authService := NewAuthService(mockUserRepo, mockRefreshTokenRepo, testAuthConfig())

	mockRefreshTokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	user := &models.User{ID: "user-1", Email: "student@example.com", Role: "student"}
	accessToken, refreshToken, err := authService.IssueTokens(context.Background(), user)

	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)

	claims, err := authService.ValidateToken(accessToken)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "student@example.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
	mockRefreshTokenRepo.AssertExpectations(t)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	refreshRepo := new(MockRefreshTokenRepository)
	refreshRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	signing := NewAuthService(new(MockUserRepository), refreshRepo, testAuthConfig())

	accessToken, _, err := signing.IssueTokens(context.Background(), &models.User{ID: "user-1", Role: "student"})
	assert.NoError(t, err)

	otherCfg := testAuthConfig()
	otherCfg.JWTSecret = "a-completely-different-secret!!!"
	otherService := NewAuthService(new(MockUserRepository), new(MockRefreshTokenRepository), otherCfg)

	_, err = otherService.ValidateToken(accessToken)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.AccessTokenTTL = -time.Minute

	refreshRepo := new(MockRefreshTokenRepository)
	refreshRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	authService := NewAuthService(new(MockUserRepository), refreshRepo, cfg)

	accessToken, _, err := authService.IssueTokens(context.Background(), &models.User{ID: "user-1", Role: "student"})
	assert.NoError(t, err)

	_, err = authService.ValidateToken(accessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestIssueAdminToken_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("panel-password"), bcrypt.MinCost)
	assert.NoError(t, err)

	cfg := testAuthConfig()
	cfg.AdminPasswordHash = string(hash)
	authService := NewAuthService(new(MockUserRepository), new(MockRefreshTokenRepository), cfg)

	token, err := authService.IssueAdminToken("panel-password")
	assert.NoError(t, err)

	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestIssueAdminToken_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("panel-password"), bcrypt.MinCost)
	cfg := testAuthConfig()
	cfg.AdminPasswordHash = string(hash)
	authService := NewAuthService(new(MockUserRepository), new(MockRefreshTokenRepository), cfg)

	_, err := authService.IssueAdminToken("guess")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueAdminToken_Disabled(t *testing.T) {
	authService := NewAuthService(new(MockUserRepository), new(MockRefreshTokenRepository), testAuthConfig())

	_, err := authService.IssueAdminToken("anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshAccessToken_RotatesBothTokens(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)
	authService := NewAuthService(mockUserRepo, mockRefreshTokenRepo, testAuthConfig())

	stored := &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "old-refresh-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	user := &models.User{ID: "user-1", Email: "student@example.com", Role: "student"}

	mockRefreshTokenRepo.On("FindByToken", mock.Anything, "old-refresh-token").Return(stored, nil)
	mockUserRepo.On("FindByID", mock.Anything, "user-1").Return(user, nil)
	mockRefreshTokenRepo.On("Revoke", mock.Anything, "rt-1").Return(nil)
	mockRefreshTokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	accessToken, refreshToken, err := authService.RefreshAccessToken(context.Background(), "old-refresh-token")

	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, "old-refresh-token", refreshToken)
	mockRefreshTokenRepo.AssertExpectations(t)
}

func TestRefreshAccessToken_Revoked(t *testing.T) {
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)
	authService := NewAuthService(new(MockUserRepository), mockRefreshTokenRepo, testAuthConfig())

	stored := &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "revoked-token",
		ExpiresAt: time.Now().Add(time.Hour),
		Revoked:   true,
	}
	mockRefreshTokenRepo.On("FindByToken", mock.Anything, "revoked-token").Return(stored, nil)
	mockRefreshTokenRepo.On("Delete", mock.Anything, "rt-1").Return(nil)

	_, _, err := authService.RefreshAccessToken(context.Background(), "revoked-token")
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRefreshAccessToken_Unknown(t *testing.T) {
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)
	authService := NewAuthService(new(MockUserRepository), mockRefreshTokenRepo, testAuthConfig())

	mockRefreshTokenRepo.On("FindByToken", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	_, _, err := authService.RefreshAccessToken(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeToken_UnknownAlwaysSucceeds(t *testing.T) {
	mockRefreshTokenRepo := new(MockRefreshTokenRepository)
	authService := NewAuthService(new(MockUserRepository), mockRefreshTokenRepo, testAuthConfig())

	mockRefreshTokenRepo.On("FindByToken", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	err := authService.RevokeToken(context.Background(), "missing")
	assert.NoError(t, err)
}
