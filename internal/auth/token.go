package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/identity-service/internal/domain"
)

// Token validation failures. Each is distinct so the authorization
// boundary can log the reason; clients only ever see a 401.
var (
	ErrTokenMalformed      = errors.New("token malformed")
	ErrBadSignature        = errors.New("token signature invalid")
	ErrBadIssuerOrAudience = errors.New("token issuer or audience mismatch")
	ErrTokenExpired        = errors.New("token expired")
)

// SigningMaterial is the symmetric secret plus the issuer/audience pair
// shared between issuance and validation. Loaded once at startup; the
// issuer doubles as the audience by deployment convention.
type SigningMaterial struct {
	Secret   string
	Issuer   string
	Audience string
}

// TokenCodec issues and validates signed bearer tokens. Tokens are
// stateless: no record of issuance is kept, and there is no revocation
// short of an external denylist keyed by the token id.
type TokenCodec struct {
	secret       []byte
	issuer       string
	audience     string
	lifetimeDays int
	now          func() time.Time
}

// NewTokenCodec builds a codec. Lifetime is expressed in whole days;
// rejecting non-positive values is a config-validation concern.
func NewTokenCodec(material SigningMaterial, lifetimeDays int) *TokenCodec {
	return &TokenCodec{
		secret:       []byte(material.Secret),
		issuer:       material.Issuer,
		audience:     material.Audience,
		lifetimeDays: lifetimeDays,
		now:          time.Now,
	}
}

// WithClock overrides the clock used for issuance and expiry checks.
func (tc *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	tc.now = now
	return tc
}

// Claims describes the JWT payload. The subject is the account email;
// uid binds the numeric user id for downstream authorization.
type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// Issue signs a token for the authenticated user. Expiry is computed
// from the codec clock at issuance, never from caller input, and every
// token carries a fresh random id.
func (tc *TokenCodec) Issue(user *domain.User) (string, time.Time, error) {
	now := tc.now()
	expiresAt := now.Add(time.Duration(tc.lifetimeDays) * 24 * time.Hour)
	claims := &Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tc.issuer,
			Audience:  jwt.ClaimStrings{tc.audience},
			Subject:   user.Email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate verifies signature, issuer, audience and expiry, returning
// the embedded claims. Expiry is checked with zero leeway: one second
// past the deadline already fails.
func (tc *TokenCodec) Validate(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadSignature
		}
		return tc.secret, nil
	},
		jwt.WithIssuer(tc.issuer),
		jwt.WithAudience(tc.audience),
		jwt.WithTimeFunc(tc.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, mapTokenError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrBadIssuerOrAudience
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}
