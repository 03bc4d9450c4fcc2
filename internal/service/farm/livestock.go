package farm

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/domain/models"
)

// AddLivestock registers a new record with a fresh identifier and empty log
// and date sequences. When the record lands in a flexible pen whose other
// occupants all share its category, the pen is restricted to that category.
// Pen compatibility is not enforced; see AddLivestockChecked.
func (s *Service) AddLivestock(ctx context.Context, animal models.Livestock) (models.Livestock, error) {
	return s.addLivestock(ctx, animal, false)
}

// AddLivestockChecked is AddLivestock with the pen compatibility rule applied
// under the same lock as the insert. An incompatible pen yields
// ErrIncompatiblePen.
func (s *Service) AddLivestockChecked(ctx context.Context, animal models.Livestock) (models.Livestock, error) {
	return s.addLivestock(ctx, animal, true)
}

func (s *Service) addLivestock(ctx context.Context, animal models.Livestock, checked bool) (models.Livestock, error) {
	if err := animal.Validate(); err != nil {
		return models.Livestock{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	penIdx := -1
	if animal.PenID != "" {
		penIdx = s.penIndex(animal.PenID)
		if penIdx < 0 {
			return models.Livestock{}, fmt.Errorf("pen %s: %w", animal.PenID, ErrNotFound)
		}
		if checked && !IsPenEligible(s.pens[penIdx], s.occupantsLocked(animal.PenID), animal.Category) {
			return models.Livestock{}, fmt.Errorf("pen %s: %w", animal.PenID, ErrIncompatiblePen)
		}
	}

	record := animal.Clone()
	record.ID = s.newID()
	record.ActivityLogs = []models.ActivityLog{}
	record.ImportantDates = []models.ImportantDate{}

	s.livestock = append(s.livestock, record)
	if err := s.persistLivestockLocked(ctx); err != nil {
		return record.Clone(), err
	}

	if penIdx >= 0 && s.canInferPenCategoryLocked(penIdx, record.Category) {
		pen := s.pens[penIdx].Clone()
		pen.AllowedCategory = models.CategoryPtr(record.Category)
		if _, err := s.replacePenLocked(ctx, pen); err != nil {
			return record.Clone(), err
		}
		s.logger.Info("pen restricted to category of first occupant",
			zap.String("pen_id", pen.ID),
			zap.String("category", string(record.Category)))
	}

	s.logger.Debug("livestock added", zap.String("id", record.ID), zap.String("category", string(record.Category)))
	return record.Clone(), nil
}

// canInferPenCategoryLocked reports whether the pen is flexible and every
// current occupant shares category.
func (s *Service) canInferPenCategoryLocked(penIdx int, category models.Category) bool {
	pen := s.pens[penIdx]
	if !pen.Flexible() {
		return false
	}

	for _, other := range s.livestock {
		if other.PenID == pen.ID && other.Category != category {
			s.logger.Warn("flexible pen holds mixed categories, leaving it unrestricted",
				zap.String("pen_id", pen.ID),
				zap.String("new_category", string(category)),
				zap.String("existing_category", string(other.Category)))
			return false
		}
	}
	return true
}

// UpdateLivestock replaces the record with the same identifier wholesale.
// Pen compatibility is not enforced; see UpdateLivestockChecked.
func (s *Service) UpdateLivestock(ctx context.Context, animal models.Livestock) (models.Livestock, error) {
	return s.updateLivestock(ctx, animal, false)
}

// UpdateLivestockChecked is UpdateLivestock with the pen compatibility rule
// applied whenever the pen or the category changes. The record being replaced
// does not count as an occupant of its own pen.
func (s *Service) UpdateLivestockChecked(ctx context.Context, animal models.Livestock) (models.Livestock, error) {
	return s.updateLivestock(ctx, animal, true)
}

func (s *Service) updateLivestock(ctx context.Context, animal models.Livestock, checked bool) (models.Livestock, error) {
	if err := animal.Validate(); err != nil {
		return models.Livestock{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.livestockIndex(animal.ID)
	if idx < 0 {
		return models.Livestock{}, fmt.Errorf("livestock %s: %w", animal.ID, ErrNotFound)
	}
	if animal.PenID != "" {
		penIdx := s.penIndex(animal.PenID)
		if penIdx < 0 {
			return models.Livestock{}, fmt.Errorf("pen %s: %w", animal.PenID, ErrNotFound)
		}
		existing := s.livestock[idx]
		moved := animal.PenID != existing.PenID || animal.Category != existing.Category
		if checked && moved && !IsPenEligible(s.pens[penIdx], s.occupantsExcludingLocked(animal.PenID, animal.ID), animal.Category) {
			return models.Livestock{}, fmt.Errorf("pen %s: %w", animal.PenID, ErrIncompatiblePen)
		}
	}

	record := animal.Clone()
	sortActivityLogs(record.ActivityLogs)
	sortImportantDates(record.ImportantDates)
	s.livestock[idx] = record

	if err := s.persistLivestockLocked(ctx); err != nil {
		return record.Clone(), err
	}
	return record.Clone(), nil
}

// SetImage records the image reference of an existing livestock record.
func (s *Service) SetImage(ctx context.Context, livestockID, imageURL string) (models.Livestock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.livestockIndex(livestockID)
	if idx < 0 {
		return models.Livestock{}, fmt.Errorf("livestock %s: %w", livestockID, ErrNotFound)
	}

	s.livestock[idx].ImageURL = imageURL
	if err := s.persistLivestockLocked(ctx); err != nil {
		return s.livestock[idx].Clone(), err
	}
	return s.livestock[idx].Clone(), nil
}

// AddActivityLog appends an entry to the record's activity log, newest first.
func (s *Service) AddActivityLog(ctx context.Context, livestockID string, entry models.ActivityLog) (models.ActivityLog, error) {
	if err := entry.Validate(); err != nil {
		return models.ActivityLog{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.livestockIndex(livestockID)
	if idx < 0 {
		return models.ActivityLog{}, fmt.Errorf("livestock %s: %w", livestockID, ErrNotFound)
	}

	created := s.appendActivityLocked(idx, entry)
	if err := s.persistLivestockLocked(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// AddImportantDate appends a milestone to the record, earliest first.
func (s *Service) AddImportantDate(ctx context.Context, livestockID string, entry models.ImportantDate) (models.ImportantDate, error) {
	if err := entry.Validate(); err != nil {
		return models.ImportantDate{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.livestockIndex(livestockID)
	if idx < 0 {
		return models.ImportantDate{}, fmt.Errorf("livestock %s: %w", livestockID, ErrNotFound)
	}

	entry.ID = s.newID()
	animal := &s.livestock[idx]
	animal.ImportantDates = append(animal.ImportantDates, entry)
	sortImportantDates(animal.ImportantDates)

	if err := s.persistLivestockLocked(ctx); err != nil {
		return entry, err
	}
	return entry, nil
}

// AddBulkActivityLogToPen appends a copy of entry, each with its own
// identifier, to every record currently assigned to penID. The appends are
// independent; there is no rollback across records.
func (s *Service) AddBulkActivityLogToPen(ctx context.Context, penID string, entry models.ActivityLog) ([]models.ActivityLog, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.penIndex(penID) < 0 {
		return nil, fmt.Errorf("pen %s: %w", penID, ErrNotFound)
	}

	created := []models.ActivityLog{}
	for i := range s.livestock {
		if s.livestock[i].PenID != penID {
			continue
		}
		created = append(created, s.appendActivityLocked(i, entry))
	}

	if len(created) == 0 {
		return created, nil
	}

	if err := s.persistLivestockLocked(ctx); err != nil {
		return created, err
	}

	s.logger.Info("bulk activity logged",
		zap.String("pen_id", penID),
		zap.String("type", string(entry.Type)),
		zap.Int("records", len(created)))
	return created, nil
}

func (s *Service) appendActivityLocked(idx int, entry models.ActivityLog) models.ActivityLog {
	entry.ID = s.newID()
	animal := &s.livestock[idx]
	animal.ActivityLogs = append(animal.ActivityLogs, entry)
	sortActivityLogs(animal.ActivityLogs)
	return entry
}

func sortActivityLogs(logs []models.ActivityLog) {
	slices.SortStableFunc(logs, func(a, b models.ActivityLog) int {
		return b.Date.Compare(a.Date)
	})
}

func sortImportantDates(dates []models.ImportantDate) {
	slices.SortStableFunc(dates, func(a, b models.ImportantDate) int {
		return a.Date.Compare(b.Date)
	})
}
