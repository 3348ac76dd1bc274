// Package auth mints and checks the HS256 access tokens that identify
// customers and staff.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/config"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
)

var method = jwt.SigningMethodHS256

type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	// JTI defaults to a random UUID.
	JTI string
}

type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claims pass; jwt calls it while parsing.
func (c AccessTokenClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return errors.New("token missing user id")
	}
	if !c.Role.IsValid() {
		return fmt.Errorf("token carries unknown role %q", c.Role)
	}
	return nil
}

func MintAccessToken(cfg config.JWTConfig, now time.Time, p AccessTokenPayload) (string, error) {
	var problems []error
	if cfg.Secret == "" {
		problems = append(problems, errors.New("jwt secret is required"))
	}
	if cfg.Issuer == "" {
		problems = append(problems, errors.New("jwt issuer is required"))
	}
	if cfg.ExpirationMinutes <= 0 {
		problems = append(problems, errors.New("jwt expiration must be positive"))
	}
	claims := AccessTokenClaims{UserID: p.UserID, Role: p.Role}
	if err := claims.Validate(); err != nil {
		problems = append(problems, err)
	}
	if err := errors.Join(problems...); err != nil {
		return "", err
	}

	if p.JTI == "" {
		p.JTI = uuid.NewString()
	}
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        p.JTI,
		Issuer:    cfg.Issuer,
		Subject:   p.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)),
	}
	return jwt.NewWithClaims(method, claims).SignedString([]byte(cfg.Secret))
}

// ParseAccessToken accepts only HS256 tokens from cfg.Issuer that carry an expiry.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	claims := &AccessTokenClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}); err != nil {
		return nil, err
	}
	return claims, nil
}
