package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"notes-server/middlewares"
	"notes-server/models"
)

// TokenClaims are the claims the identity provider puts into its RS256
// tokens. The subject is the user id.
type TokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies bearer tokens against the public keys published by
// the identity provider, selected by the token's kid header.
type JWTVerifier struct {
	store *PublicKeyStore
}

func NewJWTVerifier(store *PublicKeyStore) *JWTVerifier {
	return &JWTVerifier{store: store}
}

// Verify fails closed: every malformed, expired or unverifiable token is
// reported as middlewares.ErrInvalidToken, never as a verifier outage.
func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (*models.UserIdentity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, errors.New("kid not found in token header")
		}
		return v.store.GetKey(kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", middlewares.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, middlewares.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", middlewares.ErrInvalidToken)
	}

	return &models.UserIdentity{
		SubjectID: claims.Subject,
		Email:     claims.Email,
	}, nil
}
