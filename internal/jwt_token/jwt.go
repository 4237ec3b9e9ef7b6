package jwttoken

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"itrust/internal/platform/middleware"
	"itrust/pkg/domain"
	dErrors "itrust/pkg/domain-errors"
)

// Claims are the claims carried by the identity collaborator's access
// tokens. Only the account id is meaningful to the core.
type Claims struct {
	AccountID string `json:"account_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Validator verifies HS256 access tokens minted by the external identity
// service. The core shares the signing key but never issues tokens.
type Validator struct {
	signingKey []byte
}

func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a token, returning the claims the
// middleware needs.
func (v *Validator) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.signingKey, nil
	})
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnauthorized, "invalid token", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	accountID, err := domain.ParseAccountID(claims.AccountID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token missing account id")
	}

	return &middleware.TokenClaims{
		AccountID: accountID,
		SessionID: claims.SessionID,
	}, nil
}
