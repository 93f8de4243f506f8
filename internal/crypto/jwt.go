package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/centsible/centsible-go/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const (
	tokenIssuer   = "centsible"
	tokenAudience = "centsible-api"
)

// Claims are the JWT claims carried by an access token. The token is
// self-contained: identity and role are asserted by the signature alone
// and no session record exists server side.
type Claims struct {
	jwt.RegisteredClaims
	UserID string     `json:"user_id"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
}

// GenerateToken signs an HS256 token for the user. Expiry is fixed at
// issuance; there is no revocation list.
func GenerateToken(user *model.User, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and validates a token string, returning its
// claims when the signature, issuer, audience, and expiry all check out.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithAudience(tokenAudience))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
