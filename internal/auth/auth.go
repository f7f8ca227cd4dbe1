package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuerName = "studyhall"

func NewIssuer(secret string, expiry time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}

	if expiry <= 0 {
		expiry = time.Hour
	}

	return &Issuer{secret: []byte(secret), expiry: expiry, now: time.Now}, nil
}

// creates an access token for the user
func (i *Issuer) GenerateJWT(userID, email string) (string, error) {
	now := i.now()

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuerName,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// validates a JWT token and returns the claims
func (i *Issuer) ValidateJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return i.secret, nil
	}, jwt.WithIssuer(issuerName), jwt.WithTimeFunc(i.now))

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// token lifetime in seconds, returned to clients on login
func (i *Issuer) ExpiresIn() int64 {
	return int64(i.expiry / time.Second)
}
