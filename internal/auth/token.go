package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Verification failures are split so callers can treat an expired token as a
// routine event while logging everything else as security-relevant.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims describes the JWT payload.
type Claims struct {
	UserID    string      `json:"uid"`
	Role      domain.Role `json:"role"`
	TokenType string      `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair bundles the credentials returned at login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenManager issues and verifies signed access/refresh tokens. Secrets and
// the signing algorithm are configuration, initialized once and read-only.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	method        jwt.SigningMethod
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager builds a manager from auth configuration.
func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	method := jwt.GetSigningMethod(cfg.SigningAlgorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", cfg.SigningAlgorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC scheme", cfg.SigningAlgorithm)
	}
	return &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		method:        method,
		accessTTL:     cfg.AccessTTL(),
		refreshTTL:    cfg.RefreshTTL(),
	}, nil
}

// IssuePair signs a fresh access/refresh token pair for the subject.
func (tm *TokenManager) IssuePair(userID string, role domain.Role) (TokenPair, error) {
	access, err := tm.sign(userID, role, tokenTypeAccess, tm.accessSecret, tm.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := tm.sign(userID, role, tokenTypeRefresh, tm.refreshSecret, tm.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess validates an access token and returns its claims. It fails with
// ErrTokenExpired when the expiry claim has passed and ErrTokenInvalid for any
// other reason (bad signature, malformed, wrong kind of token).
func (tm *TokenManager) VerifyAccess(tokenStr string) (*Claims, error) {
	return tm.verify(tokenStr, tokenTypeAccess, tm.accessSecret)
}

// VerifyRefresh validates a refresh token with the same failure split.
func (tm *TokenManager) VerifyRefresh(tokenStr string) (*Claims, error) {
	return tm.verify(tokenStr, tokenTypeRefresh, tm.refreshSecret)
}

func (tm *TokenManager) sign(userID string, role domain.Role, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(tm.method, claims).SignedString(secret)
}

func (tm *TokenManager) verify(tokenStr, wantType string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != tm.method.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: bad claims", ErrTokenInvalid)
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("%w: wrong token type", ErrTokenInvalid)
	}
	return claims, nil
}
