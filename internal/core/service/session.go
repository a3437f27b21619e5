package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/onboarding-api/internal/core/domain"
	"github.com/99minutos/onboarding-api/internal/core/ports"
)

const defaultSessionTTL = 90 * 24 * time.Hour

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// sessionClaims extends the registered claims with the issue time at
// millisecond resolution. iat itself is whole seconds.
type sessionClaims struct {
	jwt.RegisteredClaims
	IssuedAtMillis int64 `json:"iat_ms,omitempty"`
}

// Issue signs a new session token for userID.
func (m *TokenManager) Issue(userID string) (string, *ports.SessionInfo, error) {
	now := m.now().UTC().Truncate(time.Millisecond)
	info := &ports.SessionInfo{
		ID:        uuid.NewString(),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        info.ID,
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(info.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(info.ExpiresAt),
		},
		IssuedAtMillis: now.UnixMilli(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, info, nil
}

// Parse verifies the signature and expiry of token. Expired tokens return
// domain.ErrTokenExpired; anything else unusable returns domain.ErrTokenInvalid.
func (m *TokenManager) Parse(token string) (*ports.SessionInfo, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if claims.Subject == "" || claims.ID == "" || claims.IssuedAt == nil {
		return nil, domain.ErrTokenInvalid
	}

	// Tokens without iat_ms fall back to iat, which only errs towards
	// treating them as older.
	issuedAt := claims.IssuedAt.Time.UTC()
	if claims.IssuedAtMillis != 0 {
		precise := time.UnixMilli(claims.IssuedAtMillis).UTC()
		if precise.Unix() != issuedAt.Unix() {
			return nil, domain.ErrTokenInvalid
		}
		issuedAt = precise
	}

	return &ports.SessionInfo{
		ID:        claims.ID,
		UserID:    claims.Subject,
		IssuedAt:  issuedAt,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
