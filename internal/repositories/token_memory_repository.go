package repositories

import (
	"sync"

	"inventoritoko/internal/models"
)

// MemoryTokenRepository is an in-memory TokenRepository for tests and
// throwaway sessions.
type MemoryTokenRepository struct {
	session *models.AuthSession
	mu      sync.RWMutex
}

// NewMemoryTokenRepository creates an empty MemoryTokenRepository.
func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{}
}

func (r *MemoryTokenRepository) Load() (*models.AuthSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.session == nil {
		return nil, nil
	}
	s := *r.session
	return &s, nil
}

func (r *MemoryTokenRepository) Token() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.session == nil {
		return "", nil
	}
	return r.session.Token, nil
}

func (r *MemoryTokenRepository) Save(session models.AuthSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.session = &session
	return nil
}

func (r *MemoryTokenRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.session = nil
	return nil
}
