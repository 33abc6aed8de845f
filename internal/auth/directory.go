package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Directory is the user directory: signup, password check and saved addresses.
type Directory struct {
	Store Store
	Log   *zap.Logger
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

func NewDirectory(store Store, log *zap.Logger) *Directory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Directory{Store: store, Log: log}
}

func (d *Directory) Signup(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if !emailRe.MatchString(email) {
		return User{}, ErrInvalidEmail
	}
	if password == "" {
		return User{}, ErrPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost())
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return User{}, ErrPasswordTooLong
	}
	if err != nil {
		return User{}, err
	}

	u := User{Email: email, Hash: string(hash)}
	if err := d.Store.Create(ctx, u); err != nil {
		return User{}, err
	}

	d.Log.Info("user signed up", zap.String("email", email))
	return u, nil
}

// Authenticate does not tell an unknown email from a wrong password.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, ok, err := d.Store.Get(ctx, normalizeEmail(email))
	if err != nil {
		return User{}, err
	}
	if !ok || u.Hash == "" {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (d *Directory) UpdateAddress(ctx context.Context, email string, addr Address) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrInvalidEmail
	}
	return d.Store.UpsertAddress(ctx, email, addr)
}

// GetAddress returns the zero Address for unknown users.
func (d *Directory) GetAddress(ctx context.Context, email string) (Address, error) {
	u, ok, err := d.Store.Get(ctx, normalizeEmail(email))
	if err != nil || !ok {
		return Address{}, err
	}
	return u.Address, nil
}

func (d *Directory) Ping(ctx context.Context) error {
	return d.Store.Ping(ctx)
}

func (d *Directory) cost() int {
	if d.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return d.Cost
}
