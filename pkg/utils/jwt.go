package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken issues a session token for an authenticated principal.
// Credential issuance itself lives outside this service; this helper exists
// for the auth gate's consumers and for tests.
func GenerateToken(id uint, email, userType string) (string, error) {
	claims := jwt.MapClaims{
		"id":       id,
		"email":    email,
		"userType": userType,
		"exp":      time.Now().Add(time.Hour * 24 * 7).Unix(), // 7 days
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
}
