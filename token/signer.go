package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Signer turns session claims into a compact JWT and back
type Signer interface {
	Sign(claims *Claims) (string, error)
	Parse(rawToken string, claims *Claims, options ...jwt.ParserOption) (*jwt.Token, error)
}

var _ Signer = (*HMACSigner)(nil)

// HMACSigner signs with HS256 and a shared secret (the server's JWT_SECRET)
type HMACSigner struct {
	secret []byte
}

func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{secret: []byte(secret)}
}

func (h *HMACSigner) Sign(claims *Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "[HMACSigner.Sign] SignedString")
	}
	return signed, nil
}

// Parse only accepts HS256, so a token re-signed with another algorithm (or "none") is rejected
func (h *HMACSigner) Parse(rawToken string, claims *Claims, options ...jwt.ParserOption) (*jwt.Token, error) {
	options = append(options, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return jwt.ParseWithClaims(rawToken, claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	}, options...)
}
