package auth

import (
	"context"
	"regexp"
	"strings"

	"FreshBasket/pkg/apperr"
)

var (
	ErrInvalidEmail       = apperr.Kind(apperr.ErrInvalidInput, "invalid email")
	ErrPasswordRequired   = apperr.Kind(apperr.ErrInvalidInput, "password required")
	ErrPasswordTooLong    = apperr.Kind(apperr.ErrInvalidInput, "password too long")
	ErrEmailExists        = apperr.Kind(apperr.ErrAlreadyExists, "email already exists")
	ErrInvalidCredentials = apperr.Kind(apperr.ErrInvalidCredentials, "invalid credentials")
)

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Address is the delivery address saved on the user and copied into each order.
type Address struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Pincode string `json:"pincode"`
	Taluk   string `json:"taluk"`
}

// User is keyed by normalized email. An empty Hash marks a record created by
// an address upsert, which can never log in.
type User struct {
	Email   string  `json:"email"`
	Hash    string  `json:"password_hash,omitempty"`
	Address Address `json:"address"`
}

type Store interface {
	Ping(ctx context.Context) error
	// Create fails with ErrEmailExists when the email has a password. A
	// passwordless record (saved address only) is claimed, keeping its address.
	Create(ctx context.Context, u User) error
	Get(ctx context.Context, email string) (User, bool, error)
	// UpsertAddress overwrites the address, creating a passwordless user if needed.
	UpsertAddress(ctx context.Context, email string, addr Address) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
