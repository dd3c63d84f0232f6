package testutil

import (
	"context"
	"sync"

	"github.com/quillpost/quillpost/internal/model"
	"github.com/quillpost/quillpost/internal/repository"
)

// MemoryUsers is an in-memory user directory with the same error contract as
// the PostgreSQL repository. CreateUser is atomic per email.
type MemoryUsers struct {
	mu      sync.RWMutex
	byID    map[string]model.User
	byEmail map[string]string

	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryUsers creates an empty MemoryUsers.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		byID:    make(map[string]model.User),
		byEmail: make(map[string]string),
	}
}

// CreateUser stores user, or returns repository.ErrEmailExists.
func (m *MemoryUsers) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return repository.ErrEmailExists
	}

	m.byID[user.ID] = *user
	m.byEmail[user.Email] = user.ID
	return nil
}

// GetUserByEmail returns the user with email, or repository.ErrUserNotFound.
func (m *MemoryUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	id, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	user := m.byID[id]
	return &user, nil
}

// GetUserByID returns the user with id, or repository.ErrUserNotFound.
func (m *MemoryUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

// Delete removes a user. Used to test tokens of users that no longer exist.
func (m *MemoryUsers) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.byID[id]; ok {
		delete(m.byEmail, user.Email)
		delete(m.byID, id)
	}
}

// Len returns the number of stored users.
func (m *MemoryUsers) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
