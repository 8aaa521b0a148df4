package auth

import "context"

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login verifies an agent's credentials and returns a signed JWT.
	Login(ctx context.Context, email, password string) (string, error)
}
