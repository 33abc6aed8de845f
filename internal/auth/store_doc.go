package auth

import (
	"context"
	"time"

	"FreshBasket/internal/docstore"
)

// DocStore keeps all users in one "users" document keyed by email.
type DocStore struct {
	doc *docstore.Collection[map[string]User]
}

func NewDocStore(b docstore.Backend, timeout time.Duration) *DocStore {
	return &DocStore{doc: docstore.NewCollection[map[string]User](b, "users", timeout)}
}

func (s *DocStore) Ping(ctx context.Context) error {
	return s.doc.Ping(ctx)
}

func (s *DocStore) Create(ctx context.Context, u User) error {
	return s.doc.Update(ctx, func(users *map[string]User, _ bool) error {
		if *users == nil {
			*users = make(map[string]User)
		}
		if prev, ok := (*users)[u.Email]; ok {
			if prev.Hash != "" {
				return ErrEmailExists
			}
			u.Address = prev.Address
		}
		(*users)[u.Email] = u
		return nil
	})
}

func (s *DocStore) Get(ctx context.Context, email string) (User, bool, error) {
	users, _, err := s.doc.Load(ctx)
	if err != nil {
		return User{}, false, err
	}
	u, ok := users[email]
	return u, ok, nil
}

func (s *DocStore) UpsertAddress(ctx context.Context, email string, addr Address) error {
	return s.doc.Update(ctx, func(users *map[string]User, _ bool) error {
		if *users == nil {
			*users = make(map[string]User)
		}
		u, ok := (*users)[email]
		if !ok {
			u = User{Email: email}
		}
		u.Address = addr
		(*users)[email] = u
		return nil
	})
}
