package dto

// RegisterRequest captures self-registration payloads.
type RegisterRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=255"`
	Email         string `json:"email" validate:"required,email,max=255"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	Role          string `json:"role" validate:"omitempty,oneof=superadmin admin president ambassador member"`
	Phone         string `json:"phone" validate:"omitempty,max=32"`
	AssociationID *uint  `json:"association_id" validate:"omitempty,gt=0"`
	Passcode      string `json:"passcode" validate:"omitempty,max=128"`
}

// LoginRequest captures credential payloads.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Passcode string `json:"passcode" validate:"omitempty,max=128"`
}

// RefreshRequest carries the refresh token to rotate or revoke.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is returned after login, registration and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthResponse bundles the issued tokens with the authenticated user.
type AuthResponse struct {
	User   UserResponse `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}
