package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the access token payload minted by the external
// identity provider. The user_id claim selects the gradebook document.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}
