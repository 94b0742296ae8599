package common

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	accessSecret  = []byte(os.Getenv("ACCESS_TOKEN_SECRET"))
	refreshSecret = []byte(os.Getenv("REFRESH_TOKEN_SECRET"))
)

const (
	accessTokenTTL  = 1 * time.Hour
	refreshTokenTTL = 24 * time.Hour
)

// Claims represents the data stored in a JWT token.
type Claims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

func GenerateAccessToken(userID uint64) (string, error) {
	return generate(userID, accessTokenTTL, accessSecret)
}

func GenerateRefreshToken(userID uint64) (string, error) {
	return generate(userID, refreshTokenTTL, refreshSecret)
}

func generate(userID uint64, ttl time.Duration, secret []byte) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "gochat",
			Subject:   "user-auth",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secret)
}

// ValidToken parses an access token and returns its claims.
func ValidToken(tokenstring string) (*Claims, error) {
	return parse(tokenstring, accessSecret)
}

// ValidRefreshToken parses a refresh token and returns its claims.
func ValidRefreshToken(tokenstring string) (*Claims, error) {
	return parse(tokenstring, refreshSecret)
}

func parse(tokenstring string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenstring, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
