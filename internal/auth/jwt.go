package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenMaker struct {
	secret []byte
	issuer string
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{
		secret: []byte(secret),
		issuer: "freshbasket",
	}
}

// Session is the identity carried by the session token.
// Email is empty for anonymous visitors.
type Session struct {
	SID   string `json:"sid"`
	Email string `json:"email,omitempty"`
	Admin bool   `json:"admin,omitempty"`
}

type Claims struct {
	Session
	jwt.RegisteredClaims
}

func (t *TokenMaker) New(s Session, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Session: s,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.SID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenMaker) Parse(tokenStr string) (Session, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer))
	if err != nil || token == nil || !token.Valid {
		return Session{}, errors.New("invalid token")
	}
	if c.SID == "" {
		return Session{}, errors.New("token without session id")
	}

	return c.Session, nil
}
