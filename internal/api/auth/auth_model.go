package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the claim set carried by an access token. The subject is the
// username; no server-side session backs the token.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenResponse is returned by the password-grant token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
