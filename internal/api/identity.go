package api

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shauryatech/notifyctl/internal/model"
)

type identityClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// DecodeIdentity extracts the user identity from the JWT payload. The
// signature is not verified: the token is opaque proof for the server, the
// claims are only display/addressing data on this side.
func DecodeIdentity(token string) (model.User, error) {
	var claims identityClaims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return model.User{}, err
	}
	if claims.UserID == "" {
		return model.User{}, fmt.Errorf("token has no user_id claim")
	}
	return model.User{
		UserID:   claims.UserID,
		Email:    claims.Email,
		ClientID: claims.ClientID,
	}, nil
}
