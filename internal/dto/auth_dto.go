package dto

// LoginRequest: payload for signing in through the identity provider.
// Credential is whatever the configured provider accepts (an OAuth code,
// or "email|Display Name" for the local provider).
type LoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// AuthResponse: response payload after successful authentication
type AuthResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int64            `json:"expires_in"` // seconds
	Profile      *ProfileResponse `json:"profile"`
}

// RefreshTokenRequest: payload for refreshing the access token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResponse: response payload after refreshing, both tokens rotate
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

// AdminLoginRequest: payload for unlocking the moderation panel
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse: response payload carrying the moderation token
type AdminLoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

// SessionResponse: the current session state for the client shell
type SessionResponse struct {
	State   string           `json:"state"`
	Profile *ProfileResponse `json:"profile,omitempty"`
}
