// Package export copies the livestock and pen collections into a spreadsheet.
package export

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/domain/models"
)

const (
	LivestockRange = "Livestock!A:J"
	PensRange      = "Pens!A:E"

	dateLayout = "2006-01-02"
)

var (
	livestockHeader = []interface{}{"ID", "Category", "Animal ID", "Breed", "Gender", "Birth Date", "Quantity", "Pen ID", "Activity Logs", "Important Dates"}
	penHeader       = []interface{}{"ID", "Name", "Description", "Allowed Category", "Occupants"}
)

// Reader is the read side of the farm repository.
type Reader interface {
	ListLivestock() []models.Livestock
	PenCounts() []models.PenOccupancy
}

// SheetWriter replaces spreadsheet ranges.
type SheetWriter interface {
	ClearRange(ctx context.Context, sheetRange string) error
	WriteRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// Result summarises one export run.
type Result struct {
	LivestockRows int       `json:"livestockRows"`
	PenRows       int       `json:"penRows"`
	ExportedAt    time.Time `json:"exportedAt"`
}

// Service writes a snapshot of the farm to a spreadsheet.
type Service struct {
	reader Reader
	writer SheetWriter
	logger *zap.Logger
}

// NewService wires a new export service.
func NewService(reader Reader, writer SheetWriter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{reader: reader, writer: writer, logger: logger}
}

// Export clears both sheets and writes the current collections with a
// header row each.
func (s *Service) Export(ctx context.Context) (Result, error) {
	herd := s.reader.ListLivestock()
	occupancy := s.reader.PenCounts()

	livestockRows := [][]interface{}{livestockHeader}
	for _, animal := range herd {
		livestockRows = append(livestockRows, livestockRow(animal))
	}

	penRows := [][]interface{}{penHeader}
	for _, entry := range occupancy {
		allowed := ""
		if entry.Pen.AllowedCategory != nil {
			allowed = string(*entry.Pen.AllowedCategory)
		}
		penRows = append(penRows, []interface{}{entry.Pen.ID, entry.Pen.Name, entry.Pen.Description, allowed, entry.Count})
	}

	if err := s.replace(ctx, LivestockRange, livestockRows); err != nil {
		return Result{}, err
	}
	if err := s.replace(ctx, PensRange, penRows); err != nil {
		return Result{}, err
	}

	result := Result{
		LivestockRows: len(herd),
		PenRows:       len(occupancy),
		ExportedAt:    time.Now().UTC(),
	}
	s.logger.Info("farm exported to sheets",
		zap.Int("livestock", result.LivestockRows),
		zap.Int("pens", result.PenRows))
	return result, nil
}

func (s *Service) replace(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if err := s.writer.ClearRange(ctx, sheetRange); err != nil {
		return fmt.Errorf("export %s: %w", sheetRange, err)
	}
	if err := s.writer.WriteRows(ctx, sheetRange, rows); err != nil {
		return fmt.Errorf("export %s: %w", sheetRange, err)
	}
	return nil
}

func livestockRow(animal models.Livestock) []interface{} {
	var tag, breed, gender, birth, quantity string
	switch d := animal.Details.(type) {
	case models.Individual:
		tag, breed, gender = d.Tag, d.Breed, string(d.Gender)
		birth = d.BirthDate.Format(dateLayout)
	case models.Batch:
		tag, breed = d.BatchID, d.Strain
		quantity = fmt.Sprint(d.Quantity)
		if d.StartDate != nil {
			birth = d.StartDate.Format(dateLayout)
		}
	}

	return []interface{}{
		animal.ID,
		string(animal.Category),
		tag,
		breed,
		gender,
		birth,
		quantity,
		animal.PenID,
		len(animal.ActivityLogs),
		len(animal.ImportantDates),
	}
}
