package server

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

// Auth mints and checks session resume tokens. The signing secret is
// generated at startup and never persisted, so tokens share the
// lifetime of the process, same as the user registry.
type Auth struct {
	secret []byte
}

// NewAuth generates a fresh signing secret.
func NewAuth() (*Auth, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate auth secret: %w", err)
	}
	return &Auth{secret: secret}, nil
}

// IssueToken signs a resume token for a registered user.
func (a *Auth) IssueToken(userID, username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"pid": userID,
		"usr": username,
		"exp": now.Add(tokenTTL).Unix(),
		"iat": now.Unix(),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a resume token and returns the embedded user
// id and name.
func (a *Auth) ValidateToken(tokenString string) (userID, username string, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}
	userID, _ = claims["pid"].(string)
	username, _ = claims["usr"].(string)
	if userID == "" || username == "" {
		return "", "", fmt.Errorf("token missing identity claims")
	}
	return userID, username, nil
}
