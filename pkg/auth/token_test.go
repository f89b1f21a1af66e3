package auth

import (
	"testing"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = config.JWTConfig{Secret: "secret", Issuer: "aiazent", ExpirationMinutes: 30}

func TestMintAndParseRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	userID := uuid.New()

	raw, err := MintAccessToken(testCfg, now, AccessTokenPayload{UserID: userID, Role: enums.UserRoleAdmin, JTI: " session-1 "})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testCfg, raw)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, enums.UserRoleAdmin, claims.Role)
	assert.Equal(t, "session-1", claims.ID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "aiazent", claims.Issuer)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestMintGeneratesJTI(t *testing.T) {
	raw, err := MintAccessToken(testCfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleUser})
	require.NoError(t, err)
	claims, err := ParseAccessToken(testCfg, raw)
	require.NoError(t, err)
	_, err = uuid.Parse(claims.ID)
	assert.NoError(t, err)
}

func TestParseRejects(t *testing.T) {
	raw, err := MintAccessToken(testCfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleUser})
	require.NoError(t, err)

	otherSecret := testCfg
	otherSecret.Secret = "different"
	otherIssuer := testCfg
	otherIssuer.Issuer = "someone-else"

	expired, err := MintAccessToken(testCfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleUser})
	require.NoError(t, err)

	_, err = ParseAccessToken(testCfg, raw[:len(raw)-2])
	assert.Error(t, err)
	_, err = ParseAccessToken(otherSecret, raw)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	_, err = ParseAccessToken(otherIssuer, raw)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	_, err = ParseAccessToken(testCfg, expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsForgedShapes(t *testing.T) {
	sign := func(claims jwt.Claims, method jwt.SigningMethod) string {
		raw, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testCfg.Secret))
		require.NoError(t, err)
		return raw
	}
	now := time.Now()
	userID := uuid.New()
	base := jwt.RegisteredClaims{Issuer: testCfg.Issuer, Subject: userID.String(), ID: "jti", IssuedAt: jwt.NewNumericDate(now)}

	noExp := sign(AccessTokenClaims{UserID: userID, Role: enums.UserRoleUser, RegisteredClaims: base}, jwt.SigningMethodHS256)
	_, err := ParseAccessToken(testCfg, noExp)
	assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)

	withExp := base
	withExp.ExpiresAt = jwt.NewNumericDate(now.Add(time.Minute))
	wrongAlg := sign(AccessTokenClaims{UserID: userID, Role: enums.UserRoleUser, RegisteredClaims: withExp}, jwt.SigningMethodHS512)
	_, err = ParseAccessToken(testCfg, wrongAlg)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	mismatched := withExp
	mismatched.Subject = uuid.NewString()
	_, err = ParseAccessToken(testCfg, sign(AccessTokenClaims{UserID: userID, Role: enums.UserRoleUser, RegisteredClaims: mismatched}, jwt.SigningMethodHS256))
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidClaims)
}

func TestMintRejectsBadInput(t *testing.T) {
	_, err := MintAccessToken(testCfg, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	assert.Error(t, err)
	_, err = MintAccessToken(testCfg, time.Now(), AccessTokenPayload{Role: enums.UserRoleUser})
	assert.Error(t, err)
	_, err = MintAccessToken(config.JWTConfig{Issuer: "x"}, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleUser})
	assert.Error(t, err)
}
