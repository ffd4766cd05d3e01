package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"libman/internal/domain"
)

// Claims is the JWT payload: the subject is the user's email, name and role
// ride along for display and authorization.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access tokens with a shared HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed bearer token for the given identity.
func (t *TokenIssuer) Issue(email, name, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", domain.E(domain.KindUnauthorized, "could not sign token")
	}
	return signed, nil
}

// Parse verifies the signature and expiry and returns the claims.
func (t *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.E(domain.KindUnauthorized, "invalid token")
	}
	if claims.Subject == "" {
		return nil, domain.E(domain.KindUnauthorized, "invalid token: subject missing")
	}
	return claims, nil
}
