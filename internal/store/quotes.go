package store

import (
	"sync"
	"time"

	"github.com/marekkolman/rates-engine/pkg/models"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

// QuoteStore holds the latest quote sets keyed by instrument group. Feed
// updates arrive tenor by tenor; subscribers are notified after each apply.
type QuoteStore struct {
	sets        map[string]*models.QuoteSet
	subscribers []func(models.Quote)
	mu          sync.RWMutex
	log         *logger.Logger
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{
		sets: make(map[string]*models.QuoteSet),
		log:  logger.GetLogger("store.quotes"),
	}
}

// Get returns a copy of the quote set for an instrument group.
func (s *QuoteStore) Get(id string) (*models.QuoteSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, exists := s.sets[id]
	if !exists {
		return nil, errors.NotFound("quote set not found: " + id)
	}
	return set.Clone(), nil
}

// Save stores or replaces a whole quote set.
func (s *QuoteStore) Save(set *models.QuoteSet) error {
	if set == nil {
		return errors.InvalidArgument("cannot save nil quote set")
	}
	if set.ID == "" {
		return errors.InvalidArgument("quote set ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set.UpdatedAt = time.Now().UTC()
	s.sets[set.ID] = set.Clone()
	return nil
}

// Apply merges a single feed quote into its instrument group's set and
// notifies subscribers. Unknown groups are created on the fly.
func (s *QuoteStore) Apply(q models.Quote) error {
	if q.Instrument == "" || q.Tenor == "" {
		return errors.InvalidArgument("quote needs instrument and tenor")
	}

	s.mu.Lock()
	set, exists := s.sets[q.Instrument]
	if !exists {
		set = &models.QuoteSet{ID: q.Instrument, Quotes: make(map[string]float64)}
		s.sets[q.Instrument] = set
	}
	set.Quotes[q.Tenor] = q.Value
	set.AsOf = q.Timestamp
	set.UpdatedAt = time.Now().UTC()
	subs := s.subscribers
	s.mu.Unlock()

	for _, notify := range subs {
		notify(q)
	}
	return nil
}

// Subscribe registers a callback invoked after every applied quote.
// Callbacks must not block.
func (s *QuoteStore) Subscribe(fn func(models.Quote)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}
