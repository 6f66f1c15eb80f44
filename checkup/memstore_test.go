package checkup

import (
	"context"
	"sort"
	"sync"

	"github.com/verdant-app/verdant-server/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory Store that also records the sequence of progress
// updates per record, so tests can assert on stage ordering.
type memStore struct {
	mu       sync.Mutex
	records  map[string]*models.Checkup
	progress map[string][]models.Progress
}

func newMemStore() *memStore {
	return &memStore{
		records:  make(map[string]*models.Checkup),
		progress: make(map[string][]models.Progress),
	}
}

func (s *memStore) Create(_ context.Context, c *models.Checkup) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cp := *c
	s.records[c.ID.Hex()] = &cp
	return c.ID.Hex(), nil
}

func (s *memStore) Get(_ context.Context, id string) (*models.Checkup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *memStore) Update(_ context.Context, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		if !mutableFields[k] {
			continue
		}
		switch k {
		case "status":
			rec.Status = v.(string)
		case "progress":
			p := v.(models.Progress)
			rec.Progress = p
			s.progress[id] = append(s.progress[id], p)
		case "checkup_result":
			rec.CheckupResult = v.(*models.CheckupResult)
		case "action_items":
			rec.ActionItems = v.([]models.ActionItem)
		case "growth_analysis":
			rec.GrowthAnalysis = v.(*models.GrowthAnalysis)
		case "error":
			rec.Error = v.(string)
		case "archived_image_key":
			rec.ArchivedImageKey = v.(string)
		}
	}
	return nil
}

func (s *memStore) ListByPlant(_ context.Context, plantID string) ([]models.Checkup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Checkup{}
	for _, rec := range s.records {
		if rec.PlantID == plantID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *memStore) progressHistory(id string) []models.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Progress(nil), s.progress[id]...)
}
