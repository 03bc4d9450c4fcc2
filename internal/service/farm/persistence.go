package farm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/domain/models"
)

// Slot names under which the two collections are stored.
const (
	LivestockSlot = "stockwiseLivestock"
	PenSlot       = "stockwisePens"
)

// SlotStore persists whole collections as JSON payloads under named slots.
type SlotStore interface {
	// Load returns the payload stored under slot; found is false when the slot
	// has never been written.
	Load(ctx context.Context, slot string) (payload []byte, found bool, err error)
	Save(ctx context.Context, slot string, payload []byte) error
}

func (s *Service) load(ctx context.Context) error {
	defaults, err := DefaultDataset()
	if err != nil {
		return fmt.Errorf("decode default dataset: %w", err)
	}

	livestock, err := loadSlot(ctx, s, LivestockSlot, defaults.Livestock, func(items []models.Livestock) error {
		for _, item := range items {
			if item.ID == "" {
				return errors.New("livestock record without id")
			}
			if err := item.Validate(); err != nil {
				return fmt.Errorf("livestock %s: %w", item.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	pens, err := loadSlot(ctx, s, PenSlot, defaults.Pens, func(items []models.Pen) error {
		for _, item := range items {
			if item.ID == "" {
				return errors.New("pen without id")
			}
			if err := item.Validate(); err != nil {
				return fmt.Errorf("pen %s: %w", item.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.livestock = livestock
	s.pens = pens
	return nil
}

// loadSlot decodes one slot. An absent slot is seeded with fallback and written
// back; an unreadable payload falls back without overwriting what is stored.
func loadSlot[T any](ctx context.Context, s *Service, slot string, fallback []T, check func([]T) error) ([]T, error) {
	payload, found, err := s.store.Load(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", slot, err)
	}

	if !found {
		s.logger.Info("slot empty, seeding default dataset", zap.String("slot", slot), zap.Int("items", len(fallback)))
		if err := s.save(ctx, slot, fallback); err != nil {
			return nil, err
		}
		return fallback, nil
	}

	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		s.logger.Warn("stored slot is not valid, using default dataset", zap.String("slot", slot), zap.Error(err))
		return fallback, nil
	}
	if err := check(items); err != nil {
		s.logger.Warn("stored slot does not match expected shape, using default dataset", zap.String("slot", slot), zap.Error(err))
		return fallback, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *Service) save(ctx context.Context, slot string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", slot, err)
	}
	if err := s.store.Save(ctx, slot, payload); err != nil {
		return fmt.Errorf("save slot %s: %w", slot, err)
	}
	return nil
}

func (s *Service) persistLivestockLocked(ctx context.Context) error {
	return s.save(ctx, LivestockSlot, s.livestock)
}

func (s *Service) persistPensLocked(ctx context.Context) error {
	return s.save(ctx, PenSlot, s.pens)
}
