package farm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/domain/models"
)

// ErrNotFound indicates the referenced livestock record or pen does not exist.
var ErrNotFound = errors.New("not found")

// ErrIncompatiblePen indicates a record was assigned to a pen that does not
// accept its category.
var ErrIncompatiblePen = errors.New("pen does not accept this livestock type")

// Service owns the livestock and pen collections. It is the only component
// allowed to mutate them and writes every change through to the SlotStore.
type Service struct {
	mu        sync.RWMutex
	store     SlotStore
	livestock []models.Livestock
	pens      []models.Pen
	logger    *zap.Logger
	newID     func() string
}

// NewService loads both collections from the store, seeding defaults where a
// slot is empty, and returns a ready repository.
func NewService(ctx context.Context, store SlotStore, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("slot store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		store:  store,
		logger: logger,
		newID:  uuid.NewString,
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("farm repository loaded",
		zap.Int("livestock", len(s.livestock)),
		zap.Int("pens", len(s.pens)))
	return s, nil
}

// ListLivestock returns a copy of every livestock record.
func (s *Service) ListLivestock() []models.Livestock {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Livestock, 0, len(s.livestock))
	for _, animal := range s.livestock {
		out = append(out, animal.Clone())
	}
	return out
}

// GetLivestockByID looks up a single record.
func (s *Service) GetLivestockByID(id string) (models.Livestock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.livestockIndex(id)
	if idx < 0 {
		return models.Livestock{}, fmt.Errorf("livestock %s: %w", id, ErrNotFound)
	}
	return s.livestock[idx].Clone(), nil
}

// GetLivestockInPen returns the records currently assigned to penID.
func (s *Service) GetLivestockInPen(penID string) []models.Livestock {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.occupantsLocked(penID)
}

// ListPens returns a copy of every pen.
func (s *Service) ListPens() []models.Pen {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Pen, 0, len(s.pens))
	for _, pen := range s.pens {
		out = append(out, pen.Clone())
	}
	return out
}

// GetPenByID looks up a single pen.
func (s *Service) GetPenByID(id string) (models.Pen, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.penIndex(id)
	if idx < 0 {
		return models.Pen{}, fmt.Errorf("pen %s: %w", id, ErrNotFound)
	}
	return s.pens[idx].Clone(), nil
}

// PenCounts returns every pen with the number of records assigned to it.
func (s *Service) PenCounts() []models.PenOccupancy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.pens))
	for _, animal := range s.livestock {
		if animal.PenID != "" {
			counts[animal.PenID]++
		}
	}

	out := make([]models.PenOccupancy, 0, len(s.pens))
	for _, pen := range s.pens {
		out = append(out, models.PenOccupancy{Pen: pen.Clone(), Count: counts[pen.ID]})
	}
	return out
}

func (s *Service) livestockIndex(id string) int {
	for i := range s.livestock {
		if s.livestock[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) penIndex(id string) int {
	for i := range s.pens {
		if s.pens[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) occupantsLocked(penID string) []models.Livestock {
	return s.occupantsExcludingLocked(penID, "")
}

// occupantsExcludingLocked lists the records in penID other than the one
// identified by selfID.
func (s *Service) occupantsExcludingLocked(penID, selfID string) []models.Livestock {
	out := []models.Livestock{}
	if penID == "" {
		return out
	}
	for _, animal := range s.livestock {
		if animal.PenID == penID && (selfID == "" || animal.ID != selfID) {
			out = append(out, animal.Clone())
		}
	}
	return out
}

// Totals returns the number of livestock records and pens.
func (s *Service) Totals() (livestock, pens int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.livestock), len(s.pens)
}
