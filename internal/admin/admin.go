package admin

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAdminDisabled = errors.New("admin login is not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Role is the only role this service issues.
const Role = "tuner"

// VerifyAdminToken checks if the provided token matches the stored hash
func VerifyAdminToken(hashedToken, plainToken string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken))
	return err == nil
}

// HashAdminToken returns the bcrypt hash to put in ADMIN_TOKEN_HASH.
func HashAdminToken(plainToken string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hashed), nil
}

// Login exchanges the shared admin token for a signed session JWT.
func Login(hashedToken, plainToken, secret string, ttl time.Duration) (string, time.Time, error) {
	if hashedToken == "" {
		return "", time.Time{}, ErrAdminDisabled
	}
	if !VerifyAdminToken(hashedToken, plainToken) {
		log.Printf("[ADMIN] Token verification failed")
		return "", time.Time{}, ErrInvalidToken
	}
	return IssueToken(secret, ttl)
}

// IssueToken signs an HS256 admin JWT valid for ttl.
func IssueToken(secret string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := jwt.MapClaims{"role": Role, "exp": exp.Unix(), "iat": time.Now().Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseToken validates an admin JWT and returns its claims.
func ParseToken(secret, raw string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if role, _ := claims["role"].(string); role != Role {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
