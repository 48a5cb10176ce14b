package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"room-reservation/internal/nonce"
)

var (
	ErrInvalidNonce     = errors.New("invalid nonce")
	ErrNonValidToken    = errors.New("token did not pass validation")
	ErrInvalidClaimType = errors.New("invalid claim type")
)

var tokenSignatureAlg = jwt.SigningMethodHS256

// Nonce outlives its token slightly to absorb clock skew
const nonceSkew = 10 * time.Second

// Claim carried by the admin auth cookie
type AuthClaims struct {
	Username string `json:"username"`
	Staff    bool   `json:"staff"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies admin tokens. Every token id is a nonce so a
// token stops verifying once it is revoked.
type Issuer struct {
	secret []byte
	nonces nonce.NonceStoreInterface
	ttl    time.Duration
}

func NewIssuer(secret string, nonces nonce.NonceStoreInterface, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		nonces: nonces,
		ttl:    ttl,
	}
}

// TTL is the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) IssueAuth(ctx context.Context, username string) (string, error) {
	claims, err := i.registeredClaim(ctx)
	if err != nil {
		return "", err
	}
	return i.generateJWT(AuthClaims{
		Username:         username,
		Staff:            true,
		RegisteredClaims: claims,
	})
}

// DecodeAuth verifies the signature, expiry and that the token was not revoked.
func (i *Issuer) DecodeAuth(ctx context.Context, tokenString string) (*AuthClaims, error) {
	claims, err := decodeJWT(tokenString, &AuthClaims{}, i.secret)
	if err != nil {
		return nil, err
	}
	if !i.nonces.Exists(ctx, claims.ID) {
		return nil, ErrInvalidNonce
	}
	return claims, nil
}

// Revoke invalidates a token by consuming its nonce.
func (i *Issuer) Revoke(ctx context.Context, claims *AuthClaims) error {
	if _, err := i.nonces.Consume(ctx, claims.ID); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (i *Issuer) registeredClaim(ctx context.Context) (jwt.RegisteredClaims, error) {
	if i.ttl <= 0 {
		return jwt.RegisteredClaims{}, fmt.Errorf("invalid token TTL %s", i.ttl)
	}
	id, err := nonce.New(ctx, i.nonces, i.ttl+nonceSkew)
	if err != nil {
		return jwt.RegisteredClaims{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now().UTC()
	return jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}, nil
}

func (i *Issuer) generateJWT(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(tokenSignatureAlg, claims)
	return token.SignedString(i.secret)
}

func decodeJWT[T jwt.Claims](tokenString string, claimsType T, secret []byte) (T, error) {
	var zero T

	parsedToken, err := jwt.ParseWithClaims(tokenString, claimsType, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{tokenSignatureAlg.Alg()}))

	if err != nil {
		return zero, err
	} else if parsedToken == nil || !parsedToken.Valid {
		return zero, ErrNonValidToken
	} else if claims, ok := parsedToken.Claims.(T); ok {
		return claims, nil
	}

	return zero, ErrInvalidClaimType
}
