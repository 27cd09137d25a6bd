package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"msgbarrier/pkg/platform/middleware/auth"
)

const adminAudience = "msgbarrier-admin"

// HMACValidator validates HS256 admin bearer tokens.
type HMACValidator struct {
	key    []byte
	issuer string
}

// NewHMACValidator returns a validator for tokens signed with key.
func NewHMACValidator(key, issuer string) (*HMACValidator, error) {
	if key == "" {
		return nil, errors.New("signing key is required")
	}
	return &HMACValidator{key: []byte(key), issuer: issuer}, nil
}

// ValidateToken checks signature, expiry, issuer and audience, and returns
// the token subject as the acting admin.
func (v *HMACValidator) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(adminAudience),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid admin token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid admin token: missing subject")
	}
	return &auth.JWTClaims{Subject: claims.Subject, JTI: claims.ID}, nil
}

// IssueToken signs an admin token for subject, valid for ttl.
// Used by the token subcommand and by tests.
func (v *HMACValidator) IssueToken(subject string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    v.issuer,
		Audience:  jwt.ClaimStrings{adminAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
}
