package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TTL = 7 * 24 * time.Hour

type Payload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type Claims struct {
	Payload
	jwt.RegisteredClaims
}

type Issuer struct {
	Secret []byte
	Now    func() time.Time
}

func NewIssuer(secret []byte) *Issuer {
	return &Issuer{Secret: secret, Now: time.Now}
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// Create signs an HS256 token that expires after TTL. Every token carries
// a fresh jti so two logins in the same second never collide.
func (i *Issuer) Create(p Payload) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(TTL)

	claims := Claims{
		Payload: p,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        NewJTI(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify returns nil for any token that is malformed, signed with another
// key or algorithm, expired, or missing its subject.
func (i *Issuer) Verify(token string) *Claims {
	if token == "" {
		return nil
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return i.Secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return nil
	}
	if claims.Subject == "" || claims.UserID != claims.Subject {
		return nil
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil
	}
	return &claims
}

func NewJTI() string { return uuid.NewString() }
