package auth

// Auth service endpoints, relative to the configured endpoint.
const (
	PathRegister        = "/auth/register"
	PathLogin           = "/auth/login"
	PathRefreshToken    = "/auth/refetch-token"
	PathActivateAccount = "/auth/activate-account"
	PathNewPassword     = "/auth/new-password"
)
