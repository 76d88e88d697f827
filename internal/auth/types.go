package auth

import "github.com/google/uuid"

// User is the authenticated account shape returned by auth flows.
type User struct {
	ID          uuid.UUID `json:"user_id"`
	Email       *string   `json:"email,omitempty"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
}

// TokenPair bundles the access and refresh tokens issued together.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterRequest is the payload for POST /v1/auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the payload for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const (
	RoleLearner = "learner"
	RoleAdmin   = "admin"
)

const OAuthProviderGoogle = "google"
