package authmodel

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register. RegisterData carries any
// service-defined profile fields and is sent as null when absent.
type RegisterRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	RegisterData any    `json:"registerData"`
}

// RefreshRequest is the body of POST /auth/refetch-token.
type RefreshRequest struct {
	UserID       string `json:"userId"`
	RefreshToken string `json:"refreshToken"`
}

// ActivateAccountRequest is the body of POST /auth/activate-account.
type ActivateAccountRequest struct {
	SecretToken string `json:"secretToken"`
}

// NewPasswordRequest is the body of POST /auth/new-password.
type NewPasswordRequest struct {
	SecretToken string `json:"secretToken"`
	Password    string `json:"password"`
}
