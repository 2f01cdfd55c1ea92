package store

import (
	"sync"
	"time"

	"github.com/marekkolman/rates-engine/internal/curve"
	"github.com/marekkolman/rates-engine/pkg/models"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

// CurveRecord couples a built curve with its metadata.
type CurveRecord struct {
	ID       string
	Currency string
	BuiltAt  time.Time
	Curve    *curve.PillarCurve
}

// Info returns the record's API representation.
func (r *CurveRecord) Info() *models.CurveInfo {
	dates, dfs := r.Curve.Pillars()
	pillars := make([]models.CurvePillar, len(dates))
	for i := range dates {
		pillars[i] = models.CurvePillar{Date: dates[i], DF: dfs[i]}
	}
	return &models.CurveInfo{
		ID:         r.ID,
		Currency:   r.Currency,
		Settlement: r.Curve.Settlement(),
		BuiltAt:    r.BuiltAt,
		Pillars:    pillars,
	}
}

// CurveStore holds built discount curves in memory.
type CurveStore struct {
	curves map[string]*CurveRecord
	mu     sync.RWMutex
	log    *logger.Logger
}

func NewCurveStore() *CurveStore {
	return &CurveStore{
		curves: make(map[string]*CurveRecord),
		log:    logger.GetLogger("store.curves"),
	}
}

// Get retrieves a curve record by ID.
func (s *CurveStore) Get(id string) (*CurveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.curves[id]
	if !exists {
		return nil, errors.NotFound("curve not found: " + id)
	}
	return rec, nil
}

// List returns all stored curve records.
func (s *CurveStore) List() []*CurveRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*CurveRecord, 0, len(s.curves))
	for _, rec := range s.curves {
		out = append(out, rec)
	}
	return out
}

// Save stores or replaces a curve record.
func (s *CurveStore) Save(rec *CurveRecord) error {
	if rec == nil || rec.Curve == nil {
		return errors.InvalidArgument("cannot save nil curve record")
	}
	if rec.ID == "" {
		return errors.InvalidArgument("curve ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.curves[rec.ID] = rec
	s.log.Debugf("Saved curve %s (%d pillars)", rec.ID, len(rec.Info().Pillars))
	return nil
}

// Delete removes a curve by ID.
func (s *CurveStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.curves[id]; !exists {
		return errors.NotFound("curve not found: " + id)
	}
	delete(s.curves, id)
	return nil
}
