package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"studyverse/internal/dto"
	"studyverse/internal/identity"
	"studyverse/internal/service"
)

type AuthHandler struct {
	sessions    *service.SessionService
	authService service.AuthService
	google      *identity.GoogleProvider
	accessTTL   time.Duration
}

// NewAuthHandler wires the session and token services. google may be nil
// when the Google provider is not configured.
func NewAuthHandler(
	sessions *service.SessionService,
	authService service.AuthService,
	google *identity.GoogleProvider,
	accessTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		sessions:    sessions,
		authService: authService,
		google:      google,
		accessTTL:   accessTTL,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.sessions.Login(c.Request.Context(), req.Credential)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	accessToken, refreshToken, err := h.authService.IssueTokens(c.Request.Context(), profile)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.accessTTL.Seconds()),
		Profile:      dto.NewProfileResponse(profile),
	})
}

// Logout ends the provider session and revokes every refresh token for the
// user. The local session always becomes anonymous, even when the provider
// call fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.authService.RevokeAllForUser(c.Request.Context(), userID); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.sessions.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "logged out, provider sign-out incomplete"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newAccessToken, newRefreshToken, err := h.authService.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.accessTTL.Seconds()),
	})
}

// RevokeToken always reports success so callers cannot probe which refresh
// tokens exist.
func (h *AuthHandler) RevokeToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_ = h.authService.RevokeToken(c.Request.Context(), req.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

// Session reports the current session state so a client shell can decide
// between the loading screen, the login page, and the app. The route has no
// auth requirement, so the profile is included only for a caller whose token
// proves they own it; anonymous callers get the state alone.
func (h *AuthHandler) Session(c *gin.Context) {
	session := h.sessions.Current()

	resp := dto.SessionResponse{State: session.State}
	if session.Profile != nil && h.callerOwnsProfile(c, session.Profile.ID) {
		resp.Profile = dto.NewProfileResponse(session.Profile)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) callerOwnsProfile(c *gin.Context, profileID string) bool {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return false
	}
	claims, err := h.authService.ValidateToken(parts[1])
	if err != nil {
		return false
	}
	return claims.UserID == profileID || claims.Role == "admin"
}

// GoogleAuthURL hands out the consent URL for the Google sign-in flow.
func (h *AuthHandler) GoogleAuthURL(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "google sign-in is not configured"})
		return
	}
	state := c.Query("state")
	c.JSON(http.StatusOK, gin.H{"url": h.google.AuthURL(state)})
}
