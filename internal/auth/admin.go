package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Admin holds the single configured admin account.
type Admin struct {
	username string
	hash     []byte
}

// NewAdmin hashes password once at startup. An empty password disables admin login.
func NewAdmin(username, password string, cost int) (*Admin, error) {
	if password == "" {
		return &Admin{username: username}, nil
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	return &Admin{username: username, hash: hash}, nil
}

func (a *Admin) Verify(username, password string) error {
	if a == nil || len(a.hash) == 0 {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	err := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	if !userOK || errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return err
}
