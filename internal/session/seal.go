package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrBadToken = errors.New("invalid session token")

type claims struct {
	Values map[string]string `json:"kv"`
	jwt.RegisteredClaims
}

// seal signs the session map so a hand-edited file is rejected on read.
func seal(values map[string]string, tab string, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	c := claims{
		Values: values,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tab,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

func open(raw, tab string, secret []byte, now func() time.Time) (map[string]string, error) {
	tok, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(now), jwt.WithSubject(tab))
	if err != nil {
		return nil, errors.Join(ErrBadToken, err)
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return nil, ErrBadToken
	}
	if c.Values == nil {
		c.Values = map[string]string{}
	}
	return c.Values, nil
}
