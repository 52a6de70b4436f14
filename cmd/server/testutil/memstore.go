package testutil

import (
	"context"
	"slices"
	"sync"

	"user-pulse/internal/services/users"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemStore is an in-memory users.Store with the same contract as the Mongo
// repository: unique emails, atomic token list updates, copies in and out.
type MemStore struct {
	mu   sync.Mutex
	byID map[bson.ObjectID]*users.User
}

var _ users.Store = (*MemStore)(nil)

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{byID: make(map[bson.ObjectID]*users.User)}
}

func clone(u *users.User) *users.User {
	c := *u
	c.Tokens = slices.Clone(u.Tokens)
	if c.Tokens == nil {
		c.Tokens = []users.SessionToken{}
	}
	return &c
}

func (s *MemStore) emailTaken(email string, except bson.ObjectID) bool {
	for id, u := range s.byID {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (s *MemStore) Create(_ context.Context, u *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[u.ID]; ok || s.emailTaken(u.Email, bson.NilObjectID) {
		return users.ErrDuplicate
	}
	s.byID[u.ID] = clone(u)
	return nil
}

func (s *MemStore) FindByID(_ context.Context, id bson.ObjectID) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return clone(u), nil
}

func (s *MemStore) FindByEmail(_ context.Context, email string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, users.ErrUserNotFound
}

func (s *MemStore) FindByToken(_ context.Context, id bson.ObjectID, token string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok || !u.HasToken(token) {
		return nil, users.ErrUserNotFound
	}
	return clone(u), nil
}

func (s *MemStore) SaveProfile(_ context.Context, u *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[u.ID]
	if !ok {
		return users.ErrUserNotFound
	}
	if s.emailTaken(u.Email, u.ID) {
		return users.ErrDuplicate
	}

	saved := clone(u)
	saved.Tokens = cur.Tokens
	s.byID[u.ID] = saved
	return nil
}

func (s *MemStore) AddToken(_ context.Context, id bson.ObjectID, token string) error {
	return s.mutateTokens(id, func(ts []users.SessionToken) []users.SessionToken {
		return append(ts, users.SessionToken{Token: token})
	})
}

func (s *MemStore) RemoveToken(_ context.Context, id bson.ObjectID, token string) error {
	return s.mutateTokens(id, func(ts []users.SessionToken) []users.SessionToken {
		return slices.DeleteFunc(ts, func(t users.SessionToken) bool { return t.Token == token })
	})
}

func (s *MemStore) ClearTokens(_ context.Context, id bson.ObjectID) error {
	return s.mutateTokens(id, func([]users.SessionToken) []users.SessionToken {
		return []users.SessionToken{}
	})
}

func (s *MemStore) mutateTokens(id bson.ObjectID, fn func([]users.SessionToken) []users.SessionToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return users.ErrUserNotFound
	}
	u.Tokens = fn(u.Tokens)
	return nil
}

func (s *MemStore) Delete(_ context.Context, id bson.ObjectID) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	delete(s.byID, id)
	return u, nil
}

// Tokens returns a copy of the stored token list of id.
func (s *MemStore) Tokens(id bson.ObjectID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(u.Tokens))
	for _, t := range u.Tokens {
		out = append(out, t.Token)
	}
	return out
}
