package farm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/domain/models"
)

// AddPen creates a pen with a fresh identifier.
func (s *Service) AddPen(ctx context.Context, pen models.Pen) (models.Pen, error) {
	if err := pen.Validate(); err != nil {
		return models.Pen{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := pen.Clone()
	record.ID = s.newID()
	s.pens = append(s.pens, record)

	if err := s.persistPensLocked(ctx); err != nil {
		return record.Clone(), err
	}

	s.logger.Debug("pen added", zap.String("id", record.ID), zap.String("name", record.Name))
	return record.Clone(), nil
}

// UpdatePen replaces the pen with the same identifier wholesale.
func (s *Service) UpdatePen(ctx context.Context, pen models.Pen) (models.Pen, error) {
	if err := pen.Validate(); err != nil {
		return models.Pen{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replacePenLocked(ctx, pen)
}

func (s *Service) replacePenLocked(ctx context.Context, pen models.Pen) (models.Pen, error) {
	idx := s.penIndex(pen.ID)
	if idx < 0 {
		return models.Pen{}, fmt.Errorf("pen %s: %w", pen.ID, ErrNotFound)
	}

	s.pens[idx] = pen.Clone()
	if err := s.persistPensLocked(ctx); err != nil {
		return s.pens[idx].Clone(), err
	}
	return s.pens[idx].Clone(), nil
}

// EligiblePens returns the pens that may receive a record of category.
func (s *Service) EligiblePens(category models.Category) []models.Pen {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Pen{}
	for _, pen := range s.pens {
		if IsPenEligible(pen, s.occupantsLocked(pen.ID), category) {
			out = append(out, pen.Clone())
		}
	}
	return out
}

// IsPenEligible is the pen compatibility rule. A pen is rejected when it is
// restricted to another category, or when it is flexible but already holds an
// animal of another category.
func IsPenEligible(pen models.Pen, occupants []models.Livestock, category models.Category) bool {
	if pen.AllowedCategory != nil {
		return *pen.AllowedCategory == category
	}
	for _, animal := range occupants {
		if animal.Category != category {
			return false
		}
	}
	return true
}
