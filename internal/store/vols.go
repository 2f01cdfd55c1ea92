package store

import (
	"sync"

	"github.com/marekkolman/rates-engine/internal/vol"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

// VolStore holds volatility structures (flat, surface, cube) in memory.
type VolStore struct {
	vols map[string]vol.Structure
	mu   sync.RWMutex
	log  *logger.Logger
}

func NewVolStore() *VolStore {
	return &VolStore{
		vols: make(map[string]vol.Structure),
		log:  logger.GetLogger("store.vols"),
	}
}

// Get retrieves a volatility structure by ID.
func (s *VolStore) Get(id string) (vol.Structure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, exists := s.vols[id]
	if !exists {
		return nil, errors.NotFound("vol structure not found: " + id)
	}
	return v, nil
}

// Save stores or replaces a volatility structure.
func (s *VolStore) Save(id string, v vol.Structure) error {
	if v == nil {
		return errors.InvalidArgument("cannot save nil vol structure")
	}
	if id == "" {
		return errors.InvalidArgument("vol ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.vols[id] = v
	s.log.Debugf("Saved vol structure %s", id)
	return nil
}

// Delete removes a volatility structure by ID.
func (s *VolStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vols[id]; !exists {
		return errors.NotFound("vol structure not found: " + id)
	}
	delete(s.vols, id)
	return nil
}
