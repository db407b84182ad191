package authprovider

import (
	"context"
	"sync"
)

// Static is an in-memory Provider for development without a provider API.
// Every user exists; metadata updates are kept for the process lifetime.
type Static struct {
	mu    sync.Mutex
	users map[string]*User
}

var _ Provider = (*Static)(nil)

func NewStatic() *Static {
	return &Static{users: make(map[string]*User)}
}

func (s *Static) GetUser(ctx context.Context, id string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.user(id)), nil
}

func (s *Static) UpdateMetadata(ctx context.Context, id string, patch map[string]interface{}) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(id)
	for k, v := range patch {
		if v == nil {
			delete(u.Metadata, k)
			continue
		}
		u.Metadata[k] = v
	}
	return clone(u), nil
}

// user must be called with mu held.
func (s *Static) user(id string) *User {
	u, ok := s.users[id]
	if !ok {
		u = &User{ID: id, Metadata: map[string]interface{}{}}
		s.users[id] = u
	}
	return u
}

func clone(u *User) *User {
	cp := *u
	cp.Metadata = make(map[string]interface{}, len(u.Metadata))
	for k, v := range u.Metadata {
		cp.Metadata[k] = v
	}
	return &cp
}
