package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid  = errors.New("invalid token")
	ErrTokenConsumed = errors.New("token already used")
)

// ExportGrant is what a signed attendee-export link allows.
type ExportGrant struct {
	EventID   string
	UserID    int64
	TokenID   string
	ExpiresAt time.Time
}

// URLSigner issues and redeems single-use signed export links.
type URLSigner struct {
	secretKey []byte
	used      CacheInterface
}

func NewURLSigner(secretKey []byte, used CacheInterface) *URLSigner {
	return &URLSigner{
		secretKey: secretKey,
		used:      used,
	}
}

// Sign returns a token granting userID one download of eventID's attendee list.
func (s *URLSigner) Sign(eventID string, userID int64, ttl time.Duration) (string, error) {
	if len(s.secretKey) == 0 {
		return "", errors.New("export signing key not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"event_id": eventID,
		"user_id":  userID,
		"jti":      uuid.New().String(),
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Redeem validates the token and marks it used. A second redeem of the same
// token fails with ErrTokenConsumed.
func (s *URLSigner) Redeem(tokenString string) (*ExportGrant, error) {
	grant, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	ttl := time.Until(grant.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	if !s.used.SetIfAbsent("used_token:"+grant.TokenID, ttl) {
		return nil, ErrTokenConsumed
	}
	return grant, nil
}

func (s *URLSigner) parse(tokenString string) (*ExportGrant, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	eventID, ok := (*claims)["event_id"].(string)
	if !ok || eventID == "" {
		return nil, fmt.Errorf("%w: missing event_id claim", ErrTokenInvalid)
	}
	userID, ok := (*claims)["user_id"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing user_id claim", ErrTokenInvalid)
	}
	tokenID, ok := (*claims)["jti"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing jti claim", ErrTokenInvalid)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrTokenInvalid)
	}

	return &ExportGrant{
		EventID:   eventID,
		UserID:    int64(userID),
		TokenID:   tokenID,
		ExpiresAt: exp.Time,
	}, nil
}
