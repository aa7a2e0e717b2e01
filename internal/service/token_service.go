package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = time.Hour

// Claims defines JWT claims for API tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// TokenService issues and parses bearer tokens for the JSON API. Browser
// traffic uses cookie sessions instead; tokens never touch the session store.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenService builds a token service. The signing key comes from
// configuration, never from source.
func NewTokenService(signingKey string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue returns a signed JWT carrying the user id.
func (s *TokenService) Issue(userID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	return token.SignedString(s.signingKey)
}

// Parse validates a JWT and returns the user id it carries.
func (s *TokenService) Parse(accessToken string) (int, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
