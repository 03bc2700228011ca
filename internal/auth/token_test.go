package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:          "test-access-secret",
		RefreshSecret:         "test-refresh-secret",
		SigningAlgorithm:      "HS256",
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLHours:  168,
	}
}

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(testAuthConfig())
	require.NoError(t, err)
	return tm
}

// signExpired crafts a token whose expiry is already in the past, simulating
// clock progression without waiting.
func signExpired(t *testing.T, secret, tokenType string) string {
	t.Helper()
	claims := &Claims{
		UserID:    "user-1",
		Role:      domain.RoleUser,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestIssuePairAndVerify(t *testing.T) {
	tm := newTestManager(t)

	pair, err := tm.IssuePair("user-42", domain.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := tm.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	refreshClaims, err := tm.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-42", refreshClaims.UserID)
}

func TestVerifyAccessExpired(t *testing.T) {
	tm := newTestManager(t)

	expired := signExpired(t, "test-access-secret", "access")
	_, err := tm.VerifyAccess(expired)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyAccessWrongSecret(t *testing.T) {
	tm := newTestManager(t)

	otherCfg := testAuthConfig()
	otherCfg.AccessSecret = "a-different-secret"
	other, err := NewTokenManager(otherCfg)
	require.NoError(t, err)

	pair, err := other.IssuePair("user-1", domain.RoleUser)
	require.NoError(t, err)

	_, err = tm.VerifyAccess(pair.AccessToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyAccessTamperedSignature(t *testing.T) {
	tm := newTestManager(t)

	pair, err := tm.IssuePair("user-1", domain.RoleUser)
	require.NoError(t, err)

	// Flip one character in the signature segment.
	parts := strings.Split(pair.AccessToken, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = tm.VerifyAccess(tampered)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyAccessMalformed(t *testing.T) {
	tm := newTestManager(t)

	for _, token := range []string{"", "not.a.token", "eyJhbGciOiJIUzI1NiJ9.invalid"} {
		_, err := tm.VerifyAccess(token)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", token)
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	tm := newTestManager(t)

	pair, err := tm.IssuePair("user-1", domain.RoleUser)
	require.NoError(t, err)

	_, err = tm.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tm.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiredRefreshToken(t *testing.T) {
	tm := newTestManager(t)

	expired := signExpired(t, "test-refresh-secret", "refresh")
	_, err := tm.VerifyRefresh(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestNewTokenManagerRejectsBadAlgorithm(t *testing.T) {
	cfg := testAuthConfig()
	cfg.SigningAlgorithm = "none"
	_, err := NewTokenManager(cfg)
	require.Error(t, err)

	cfg.SigningAlgorithm = "RS256"
	_, err = NewTokenManager(cfg)
	require.Error(t, err)

	cfg.SigningAlgorithm = "HS512"
	_, err = NewTokenManager(cfg)
	require.NoError(t, err)
}
