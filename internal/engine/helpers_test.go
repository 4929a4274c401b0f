package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"macro-log/internal/models"
)

type fakeEstimator struct {
	mu    sync.Mutex
	text  func(ctx context.Context, req models.TextEstimationRequest) (*models.EstimationResult, error)
	image func(ctx context.Context, req models.ImageEstimationRequest) (*models.EstimationResult, error)
	texts []models.TextEstimationRequest
	imgs  []models.ImageEstimationRequest
}

func (f *fakeEstimator) EstimateFromText(ctx context.Context, req models.TextEstimationRequest) (*models.EstimationResult, error) {
	f.mu.Lock()
	f.texts = append(f.texts, req)
	fn := f.text
	f.mu.Unlock()
	if fn == nil {
		return chickenRice(), nil
	}
	return fn(ctx, req)
}

func (f *fakeEstimator) EstimateFromImage(ctx context.Context, req models.ImageEstimationRequest) (*models.EstimationResult, error) {
	f.mu.Lock()
	f.imgs = append(f.imgs, req)
	fn := f.image
	f.mu.Unlock()
	if fn == nil {
		return models.NotFood(), nil
	}
	return fn(ctx, req)
}

type memPersister struct {
	mu    sync.Mutex
	snap  *Snapshot
	saves int
	err   error
}

func (m *memPersister) Load(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *memPersister) Save(ctx context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.snap = snap
	m.saves++
	return nil
}

func chickenRice() *models.EstimationResult {
	return &models.EstimationResult{
		GeneratedTitle: "Chicken and rice",
		FoodComponents: []models.FoodComponent{
			{Name: "chicken breast", Amount: 150, Unit: models.UnitGram},
			{Name: "white rice", Amount: 1, Unit: models.UnitCup},
		},
		Calories:             610,
		Protein:              52,
		Carbs:                58,
		Fat:                  9,
		EstimationConfidence: 82,
	}
}

func result(title string, calories float64) *models.EstimationResult {
	return &models.EstimationResult{
		GeneratedTitle:       title,
		FoodComponents:       []models.FoodComponent{{Name: title, Amount: 1, Unit: models.UnitServing}},
		Calories:             calories,
		Protein:              calories / 20,
		Carbs:                calories / 10,
		Fat:                  calories / 40,
		EstimationConfidence: 60,
	}
}

func newTestStore(t *testing.T, est Estimator, p Persister) *Store {
	t.Helper()
	var n int
	var mu sync.Mutex
	clock := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	s, err := Open(context.Background(), Options{
		Estimator: est,
		Persister: p,
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id-%d", n)
		},
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			clock = clock.Add(time.Minute)
			return clock
		},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func mustDraft(t *testing.T, s *Store, date string) string {
	t.Helper()
	id, err := s.StartDraft(date)
	if err != nil {
		t.Fatalf("StartDraft: %v", err)
	}
	return id
}
