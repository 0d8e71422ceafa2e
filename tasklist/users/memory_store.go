package users

import (
	"context"
	"strings"
	"sync"
	"time"
)

// in-memory Store enforcing the same uniqueness rules as the users table
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	byID     map[int64]*User
	byEmail  map[string]int64
	byGoogle map[string]int64
	now      func() time.Time
}

// creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[int64]*User),
		byEmail:  make(map[string]int64),
		byGoogle: make(map[string]int64),
		now:      time.Now,
	}
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}

	return s.copyOf(id), nil
}

func (s *MemoryStore) FindByGoogleID(_ context.Context, googleID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byGoogle[googleID]
	if !ok {
		return nil, ErrNotFound
	}

	return s.copyOf(id), nil
}

func (s *MemoryStore) FindByID(_ context.Context, userID int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[userID]; !ok {
		return nil, ErrNotFound
	}

	return s.copyOf(userID), nil
}

func (s *MemoryStore) Create(_ context.Context, u NewUser) (*User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, taken := s.byEmail[email]; taken {
		return nil, ErrConflict
	}

	if u.GoogleID != nil {
		if _, taken := s.byGoogle[*u.GoogleID]; taken {
			return nil, ErrConflict
		}
	}

	s.nextID++
	user := &User{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: cloneString(u.PasswordHash),
		GoogleID:     cloneString(u.GoogleID),
		CreatedAt:    s.now().UTC(),
	}

	s.byID[user.ID] = user
	s.byEmail[email] = user.ID
	if user.GoogleID != nil {
		s.byGoogle[*user.GoogleID] = user.ID
	}

	return s.copyOf(user.ID), nil
}

func (s *MemoryStore) AttachGoogleID(_ context.Context, userID int64, googleID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[userID]
	if !ok {
		return nil, ErrNotFound
	}

	if user.GoogleID != nil {
		if *user.GoogleID == googleID {
			return s.copyOf(userID), nil
		}

		return nil, ErrConflict
	}

	if owner, taken := s.byGoogle[googleID]; taken && owner != userID {
		return nil, ErrConflict
	}

	user.GoogleID = &googleID
	s.byGoogle[googleID] = userID

	return s.copyOf(userID), nil
}

// removes a user; used to simulate deletion by the task layer
func (s *MemoryStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[userID]
	if !ok {
		return
	}

	delete(s.byEmail, user.Email)
	if user.GoogleID != nil {
		delete(s.byGoogle, *user.GoogleID)
	}
	delete(s.byID, userID)
}

// number of stored users
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.byID)
}

// callers must hold s.mu
func (s *MemoryStore) copyOf(userID int64) *User {
	u := *s.byID[userID]
	u.PasswordHash = cloneString(u.PasswordHash)
	u.GoogleID = cloneString(u.GoogleID)

	return &u
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}

	c := *v
	return &c
}
