package auth

import "github.com/golang-jwt/jwt/v5"

// Authenticator issues and checks admin session tokens.
type Authenticator interface {
	GenerateToken(subject string) (string, error)
	ValidateToken(token string) (*jwt.Token, error)
}
