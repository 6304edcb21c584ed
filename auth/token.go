package auth

import (
	"context"
	"dialog-hub/contract"
	"dialog-hub/domain"
	"dialog-hub/errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenType is the only token type accepted on the conversation layer.
// Refresh tokens issued by the authentication service carry "refresh".
const AccessTokenType = "access"

// AccessClaims mirrors the payload issued by the authentication service:
// the user id travels in "sub", the token kind in "type".
type AccessClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

var _ contract.ITokenValidator = (*JWTValidator)(nil)

// JWTValidator checks HS256 access tokens and consults an optional revocation list.
type JWTValidator struct {
	secret      []byte
	revocations contract.IRevocationList
	leeway      time.Duration
}

func NewJWTValidator(secret string, revocations contract.IRevocationList) *JWTValidator {
	return &JWTValidator{
		secret:      []byte(secret),
		revocations: revocations,
	}
}

// WithLeeway tolerates small clock skew between the issuer and this process.
func (v *JWTValidator) WithLeeway(leeway time.Duration) *JWTValidator {
	v.leeway = leeway
	return v
}

func (v *JWTValidator) Validate(ctx context.Context, token string) (domain.UserID, error) {
	if token == "" {
		return 0, fmt.Errorf("%w: token is missing", errors.ErrAuthentication)
	}

	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrAuthentication, err)
	}

	if claims.Type != AccessTokenType {
		return 0, fmt.Errorf("%w: unexpected token type %q", errors.ErrAuthentication, claims.Type)
	}

	userID, err := domain.ParseUserID(claims.Subject)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: invalid subject %q", errors.ErrAuthentication, claims.Subject)
	}

	if v.revocations != nil && claims.ID != "" {
		revoked, err := v.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Fail closed: an unreachable denylist must not let a revoked token in
			return 0, fmt.Errorf("%w: revocation check: %v", errors.ErrAuthentication, err)
		}
		if revoked {
			return 0, fmt.Errorf("%w: token revoked", errors.ErrAuthentication)
		}
	}
	return userID, nil
}

// GenerateToken issues a signed access token for user.
// The authentication service owns issuance in production; this is used by tools and tests.
func GenerateToken(secret string, user domain.UserID, ttl time.Duration) (string, error) {
	return IssueToken(secret, user, AccessTokenType, ttl)
}

func IssueToken(secret string, user domain.UserID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &AccessClaims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// TokenID extracts the jti of a token without verifying it.
// Used by operators to revoke a token they hold.
func TokenID(token string) (string, error) {
	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", err
	}
	if claims.ID == "" {
		return "", fmt.Errorf("token has no jti")
	}
	return claims.ID, nil
}
