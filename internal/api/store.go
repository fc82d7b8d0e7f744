package api

import (
	"sync"

	"github.com/cmra-project/group-dashboard/internal/services"
)

// MemoryUserStore keeps admin accounts in memory. Accounts are seeded from
// the environment or registered at runtime; they do not survive a restart.
type MemoryUserStore struct {
	mu           sync.RWMutex
	usersByEmail map[string]*services.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{usersByEmail: map[string]*services.User{}}
}

func (s *MemoryUserStore) FindUserByEmail(email string) (*services.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.usersByEmail[email]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, nil
}

func (s *MemoryUserStore) AddUser(u *services.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersByEmail[u.Email] = u
	return nil
}
