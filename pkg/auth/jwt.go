package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrJWTSecretNotSet = errors.New("AUTH_JWT_SECRET not configured")

// CallerTokenClaims identifies an external system allowed to push messages.
type CallerTokenClaims struct {
	Caller string `json:"caller"`
	jwt.RegisteredClaims
}

// GenerateCallerToken signs a token for caller. A zero ttl never expires.
func GenerateCallerToken(caller string, ttl time.Duration) (string, time.Time, error) {
	if JWTSecretKey == "" {
		return "", time.Time{}, ErrJWTSecretNotSet
	}

	now := time.Now()
	claims := CallerTokenClaims{
		Caller: caller,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   caller,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(JWTSecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func ValidateCallerToken(tokenString string) (*CallerTokenClaims, error) {
	if JWTSecretKey == "" {
		return nil, ErrJWTSecretNotSet
	}

	token, err := jwt.ParseWithClaims(tokenString, &CallerTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(JWTSecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CallerTokenClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token claims")
}
