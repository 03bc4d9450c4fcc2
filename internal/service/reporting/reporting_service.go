package reporting

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/domain/models"
)

const (
	dateLayout         = "2006-01-02"
	dashboardDateLimit = 5
)

// Reader is the read side of the farm repository used for reporting.
type Reader interface {
	ListLivestock() []models.Livestock
	PenCounts() []models.PenOccupancy
}

// Service exposes lightweight analytics for the dashboard and reminder digests.
type Service struct {
	reader Reader
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(reader Reader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{reader: reader, logger: logger}
}

// Dashboard aggregates totals, per-pen occupancy and the next few important
// dates on or after now.
func (s *Service) Dashboard(now time.Time) models.Dashboard {
	herd := s.reader.ListLivestock()
	occupancy := s.reader.PenCounts()

	upcoming := collectUpcoming(herd, now, time.Time{})
	if len(upcoming) > dashboardDateLimit {
		upcoming = upcoming[:dashboardDateLimit]
	}

	return models.Dashboard{
		TotalLivestock: len(herd),
		TotalPens:      len(occupancy),
		PenOccupancy:   occupancy,
		UpcomingDates:  upcoming,
		GeneratedAt:    now,
	}
}

// UpcomingDigest renders the important dates falling within horizon of now as
// a plain-text message. It returns the message and the number of dates listed.
func (s *Service) UpcomingDigest(now time.Time, horizon time.Duration) (string, int) {
	until := now.Add(horizon)
	upcoming := collectUpcoming(s.reader.ListLivestock(), now, until)

	header := fmt.Sprintf("StockWise reminders (%s - %s)", now.Format(dateLayout), until.Format(dateLayout))
	if len(upcoming) == 0 {
		return header + ": nothing scheduled.", 0
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(":")
	for _, entry := range upcoming {
		fmt.Fprintf(&b, "\n- %s %s (%s)", entry.Date.Format(dateLayout), entry.EventName, entry.AnimalLabel)
		if entry.Notes != "" {
			fmt.Fprintf(&b, ": %s", entry.Notes)
		}
	}

	s.logger.Debug("reminder digest built", zap.Int("entries", len(upcoming)))
	return b.String(), len(upcoming)
}

// collectUpcoming flattens important dates on or after from, and before until
// when until is set, earliest first.
func collectUpcoming(herd []models.Livestock, from, until time.Time) []models.UpcomingDate {
	out := []models.UpcomingDate{}
	for _, animal := range herd {
		for _, entry := range animal.ImportantDates {
			if entry.Date.Before(from) {
				continue
			}
			if !until.IsZero() && entry.Date.After(until) {
				continue
			}
			out = append(out, models.UpcomingDate{
				ImportantDate: entry,
				LivestockID:   animal.ID,
				AnimalLabel:   animal.Label(),
			})
		}
	}

	slices.SortStableFunc(out, func(a, b models.UpcomingDate) int {
		return a.Date.Compare(b.Date)
	})
	return out
}
