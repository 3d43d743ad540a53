package dto

// RegisterRequest represents a registration request. Registration creates the
// user account and its student profile in one step.
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=150,alphanum"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

// RegisterResponse represents a successful registration.
type RegisterResponse struct {
	UserID    int64  `json:"userId"`
	StudentID int64  `json:"studentId"`
	Username  string `json:"username"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int    `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int    `json:"refreshTokenExpiresIn,omitempty"`
}

// RefreshTokenRequest represents a refresh token exchange request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest revokes the given refresh token
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}
