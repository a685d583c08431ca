package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// JWTClaims defines the payload for the JWT.
type JWTClaims struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	BusID  string `json:"busID,omitempty"` // assigned bus for drivers
	jwt.RegisteredClaims
}

// Hashing
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// JwtSecret is replaced from config at startup; the default only exists so
// tests can sign tokens without a config file.
var JwtSecret = []byte("campus_bus_dev_secret")

// SetSecret installs the signing key from configuration.
func SetSecret(secret string) {
	if secret != "" {
		JwtSecret = []byte(secret)
	}
}

// tokenTTL is how long issued tokens stay valid.
var tokenTTL = 24 * time.Hour

// SetExpiration installs the token lifetime from configuration. The value
// uses Go duration syntax, e.g. "24h" or "90m". Empty keeps the default.
func SetExpiration(expiration string) error {
	if expiration == "" {
		return nil
	}
	d, err := time.ParseDuration(expiration)
	if err != nil {
		return err
	}
	tokenTTL = d
	return nil
}

func GenerateJWT(userID, email, role, busID string) (string, error) {
	expirationTime := time.Now().Add(tokenTTL)
	claims := &JWTClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		BusID:  busID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtSecret)
}

// ParseJWT validates a token string and returns its claims.
func ParseJWT(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
