// internal/engine/store.go

// Package engine owns the single mutable food log store. Every mutation goes
// through a Store command; reads return deep copies.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"macro-log/internal/ferry"
	"macro-log/internal/logger"
	"macro-log/internal/models"
	"macro-log/internal/nutrition"
	"macro-log/internal/tracker"
	"macro-log/internal/validation"
)

// Snapshot is the durable part of the store. Drafts, the pending edit and
// in-flight estimation state are never part of it.
type Snapshot struct {
	Logs      []models.FoodLog
	Favorites []models.Favorite
	Settings  *models.UserSettings
}

// Persister reads and writes the durable snapshot.
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// Estimator is the external estimation capability.
type Estimator interface {
	EstimateFromText(ctx context.Context, req models.TextEstimationRequest) (*models.EstimationResult, error)
	EstimateFromImage(ctx context.Context, req models.ImageEstimationRequest) (*models.EstimationResult, error)
}

type Options struct {
	Persister Persister
	Estimator Estimator
	Logger    *logger.Logger
	Validator *validation.Validator
	Now       func() time.Time
	NewID     func() string
}

// Stats counts estimation outcomes since the store was opened.
type Stats struct {
	Settled int `json:"settled"`
	Stale   int `json:"stale"`
	Failed  int `json:"failed"`
}

type Store struct {
	mu     sync.Mutex
	saveMu sync.Mutex

	logs      map[string]*models.FoodLog
	drafts    map[string]*models.FoodLog
	favorites map[string]models.Favorite
	settings  *models.UserSettings
	targets   models.DailyTargets

	trackers  map[string]*tracker.Tracker
	requested map[string]int64 // latest requested version per log or draft
	pending   ferry.Mailbox
	stats     Stats

	persister Persister
	estimator Estimator
	validator *validation.Validator
	log       *logger.Logger
	now       func() time.Time
	newID     func() string
}

// Open builds a store and loads the persisted snapshot, if any.
func Open(ctx context.Context, opts Options) (*Store, error) {
	s := &Store{
		persister: opts.Persister,
		estimator: opts.Estimator,
		validator: opts.Validator,
		log:       opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.validator == nil {
		s.validator = validation.New()
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	s.log = s.log.Named("engine")
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.resetLocked()

	if s.persister == nil {
		return s, nil
	}
	snap, err := s.persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snap != nil {
		s.restoreLocked(snap)
	}
	s.log.Info("store opened", "logs", len(s.logs), "favorites", len(s.favorites))
	return s, nil
}

// Reset clears all state, durable and transient, as on logout.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.resetLocked()
	s.pending.Clear()
	s.mu.Unlock()
	return s.Flush(ctx)
}

// Flush writes the durable snapshot.
func (s *Store) Flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := s.persister.Save(ctx, s.snapshot()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Stats returns the estimation outcome counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Store) resetLocked() {
	s.logs = make(map[string]*models.FoodLog)
	s.drafts = make(map[string]*models.FoodLog)
	s.favorites = make(map[string]models.Favorite)
	s.settings = nil
	s.targets = models.DailyTargets{}
	s.trackers = make(map[string]*tracker.Tracker)
	s.requested = make(map[string]int64)
	s.stats = Stats{}
}

func (s *Store) restoreLocked(snap *Snapshot) {
	for _, l := range snap.Logs {
		l := l.Clone()
		l.IsEstimating = false
		l.Version = 0
		s.logs[l.ID] = &l
	}
	for _, f := range snap.Favorites {
		s.favorites[f.ID] = f
	}
	if snap.Settings != nil {
		settings := *snap.Settings
		s.settings = &settings
		targets, err := nutrition.ComputeTargets(settings)
		if err != nil {
			s.log.Warn("stored settings produce inconsistent targets", "error", err)
		}
		s.targets = targets
	}
}

func (s *Store) snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := &Snapshot{
		Logs:      make([]models.FoodLog, 0, len(s.logs)),
		Favorites: make([]models.Favorite, 0, len(s.favorites)),
	}
	for _, l := range s.logs {
		c := l.Clone()
		c.IsEstimating = false
		snap.Logs = append(snap.Logs, c)
	}
	for _, f := range s.favorites {
		snap.Favorites = append(snap.Favorites, f)
	}
	if s.settings != nil {
		settings := *s.settings
		snap.Settings = &settings
	}
	return snap
}

// update runs fn under the lock and, when durable state changed, saves.
// Save failures are logged; the in-memory store stays authoritative.
func (s *Store) update(durable bool, fn func() error) error {
	s.mu.Lock()
	err := fn()
	s.mu.Unlock()
	if err != nil || !durable {
		return err
	}
	s.save()
	return nil
}

func (s *Store) save() {
	if err := s.Flush(context.Background()); err != nil {
		s.log.Warn("persist failed", "error", err)
	}
}

// entry finds a committed log or a draft by id.
func (s *Store) entry(id string) (*models.FoodLog, bool, error) {
	if l, ok := s.logs[id]; ok {
		return l, false, nil
	}
	if d, ok := s.drafts[id]; ok {
		return d, true, nil
	}
	return nil, false, models.ErrLogNotFound
}

// touch records a user edit: bumps the version and the modification time.
func (s *Store) touch(l *models.FoodLog) {
	l.Version++
	l.UpdatedAt = s.now()
}

func validDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return &models.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	return nil
}
