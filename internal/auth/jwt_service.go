package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"karaoke/internal/model"
)

// DefaultSessionTTL is the lifetime of a session token when none is configured.
const DefaultSessionTTL = 24 * time.Hour

// Claims represents JWT claims of a session token. TableID and TableNumber
// are set only for table sessions.
type Claims struct {
	Role        model.Role `json:"role"`
	AccountID   uint       `json:"account_id"`
	TableID     uint       `json:"table_id,omitempty"`
	TableNumber int        `json:"table_number,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles session token generation and validation.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService creates a new JWT service with the given secret and token lifetime.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Secret returns the signing key, for middleware that verifies tokens.
func (s *JWTService) Secret() []byte {
	return s.secret
}

// GenerateSessionToken signs a token for the given claims. The token id
// (jti) is returned separately so it can be revoked.
func (s *JWTService) GenerateSessionToken(claims Claims, now time.Time) (tokenID, token string, expiresAt time.Time, err error) {
	tokenID = generateTokenID()
	expiresAt = now.Add(s.ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        tokenID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	token, err = tokenObj.SignedString(s.secret)
	return tokenID, token, expiresAt, err
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID == "" {
		return nil, errors.New("token ID not found")
	}

	return claims, nil
}

// generateTokenID generates a unique token ID.
func generateTokenID() string {
	return uuid.New().String()
}
