package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidLivestock indicates a livestock payload does not satisfy its variant rules.
var ErrInvalidLivestock = errors.New("invalid livestock")

// Category enumerates the livestock size classes. The category decides which
// Details variant a record carries and which pens accept it.
type Category string

const (
	CategoryMega  Category = "Mega Stock"
	CategoryMid   Category = "Mid Stock"
	CategoryMini  Category = "Mini Stock"
	CategoryMicro Category = "Micro Stock"
)

// Categories lists every supported category in display order.
var Categories = []Category{CategoryMega, CategoryMid, CategoryMini, CategoryMicro}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(value string) (Category, error) {
	normalized := strings.TrimSpace(value)
	for _, c := range Categories {
		if strings.EqualFold(string(c), normalized) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidLivestock, value)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMega, CategoryMid, CategoryMini, CategoryMicro:
		return true
	}
	return false
}

// IsIndividual reports whether records of this category are tracked per animal.
func (c Category) IsIndividual() bool {
	return c == CategoryMega || c == CategoryMid
}

// Gender of an individually tracked animal.
type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = "Unknown"
)

// ParseGender resolves a gender name case-insensitively.
func ParseGender(value string) (Gender, error) {
	for _, g := range []Gender{GenderMale, GenderFemale, GenderUnknown} {
		if strings.EqualFold(string(g), strings.TrimSpace(value)) {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: unknown gender %q", ErrInvalidLivestock, value)
}

// Details is the variant payload of a Livestock record. It is implemented by
// Individual and Batch only.
type Details interface {
	fits(Category) bool
	validate() error
}

// Individual carries the fields of a single tracked animal.
type Individual struct {
	Tag       string
	Breed     string
	BirthDate time.Time
	Gender    Gender
}

func (Individual) fits(c Category) bool { return c.IsIndividual() }

func (i Individual) validate() error {
	switch {
	case strings.TrimSpace(i.Tag) == "":
		return fmt.Errorf("%w: animal id is required", ErrInvalidLivestock)
	case strings.TrimSpace(i.Breed) == "":
		return fmt.Errorf("%w: breed is required", ErrInvalidLivestock)
	case i.BirthDate.IsZero():
		return fmt.Errorf("%w: birth date is required", ErrInvalidLivestock)
	}
	if _, err := ParseGender(string(i.Gender)); err != nil {
		return err
	}
	return nil
}

// Batch carries the fields of a batch or colony tracked as one record.
type Batch struct {
	BatchID   string
	Strain    string
	Quantity  int
	StartDate *time.Time
}

func (Batch) fits(c Category) bool { return c.Valid() && !c.IsIndividual() }

func (b Batch) validate() error {
	switch {
	case strings.TrimSpace(b.BatchID) == "":
		return fmt.Errorf("%w: batch id is required", ErrInvalidLivestock)
	case strings.TrimSpace(b.Strain) == "":
		return fmt.Errorf("%w: type/strain is required", ErrInvalidLivestock)
	case b.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidLivestock)
	}
	return nil
}

// Livestock is one registered animal or batch.
type Livestock struct {
	ID             string
	Category       Category
	PenID          string
	HealthRecords  string
	ActivityLogs   []ActivityLog
	ImportantDates []ImportantDate
	ImageURL       string
	Details        Details
}

// Validate checks that the Details variant matches the category and that its
// required fields are present.
func (l Livestock) Validate() error {
	if !l.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidLivestock, l.Category)
	}
	if l.Details == nil {
		return fmt.Errorf("%w: missing %s details", ErrInvalidLivestock, l.Category)
	}
	if !l.Details.fits(l.Category) {
		return fmt.Errorf("%w: %T details do not fit category %s", ErrInvalidLivestock, l.Details, l.Category)
	}
	return l.Details.validate()
}

// Label returns the "breed tag" display name used in digests and dashboards.
func (l Livestock) Label() string {
	switch d := l.Details.(type) {
	case Individual:
		return strings.TrimSpace(d.Breed + " " + d.Tag)
	case Batch:
		return strings.TrimSpace(d.Strain + " " + d.BatchID)
	}
	return l.ID
}

// Clone returns a deep copy so callers cannot alter repository state.
func (l Livestock) Clone() Livestock {
	out := l
	out.ActivityLogs = append([]ActivityLog{}, l.ActivityLogs...)
	out.ImportantDates = append([]ImportantDate{}, l.ImportantDates...)
	if b, ok := l.Details.(Batch); ok && b.StartDate != nil {
		start := *b.StartDate
		b.StartDate = &start
		out.Details = b
	}
	return out
}

// livestockJSON is the stored wire shape: a flat object where livestockType
// selects which of gender/quantity is meaningful.
type livestockJSON struct {
	ID             string          `json:"id"`
	Category       Category        `json:"livestockType"`
	PenID          string          `json:"penId,omitempty"`
	HealthRecords  string          `json:"healthRecords,omitempty"`
	ActivityLogs   []ActivityLog   `json:"activityLogs"`
	ImportantDates []ImportantDate `json:"importantDates"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	AnimalID       string          `json:"animalId"`
	Breed          string          `json:"breed"`
	BirthDate      *time.Time      `json:"birthDate,omitempty"`
	Gender         Gender          `json:"gender,omitempty"`
	Quantity       *int            `json:"quantity,omitempty"`
}

// MarshalJSON flattens the variant into the stored shape.
func (l Livestock) MarshalJSON() ([]byte, error) {
	wire := livestockJSON{
		ID:             l.ID,
		Category:       l.Category,
		PenID:          l.PenID,
		HealthRecords:  l.HealthRecords,
		ActivityLogs:   l.ActivityLogs,
		ImportantDates: l.ImportantDates,
		ImageURL:       l.ImageURL,
	}
	if wire.ActivityLogs == nil {
		wire.ActivityLogs = []ActivityLog{}
	}
	if wire.ImportantDates == nil {
		wire.ImportantDates = []ImportantDate{}
	}

	switch d := l.Details.(type) {
	case Individual:
		birth := d.BirthDate
		wire.AnimalID = d.Tag
		wire.Breed = d.Breed
		wire.BirthDate = &birth
		wire.Gender = d.Gender
	case Batch:
		qty := d.Quantity
		wire.AnimalID = d.BatchID
		wire.Breed = d.Strain
		wire.BirthDate = d.StartDate
		wire.Quantity = &qty
	case nil:
	default:
		return nil, fmt.Errorf("unsupported livestock details %T", l.Details)
	}

	return json.Marshal(wire)
}

// UnmarshalJSON rebuilds the variant selected by livestockType. Records
// written before categories existed carry no livestockType; they decode as
// Mini Stock when they have a quantity and as Mega Stock otherwise.
func (l *Livestock) UnmarshalJSON(data []byte) error {
	var wire livestockJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Category == "" {
		wire.Category = CategoryMega
		if wire.Quantity != nil {
			wire.Category = CategoryMini
		}
	}
	if !wire.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidLivestock, wire.Category)
	}

	out := Livestock{
		ID:             wire.ID,
		Category:       wire.Category,
		PenID:          wire.PenID,
		HealthRecords:  wire.HealthRecords,
		ActivityLogs:   wire.ActivityLogs,
		ImportantDates: wire.ImportantDates,
		ImageURL:       wire.ImageURL,
	}
	if out.ActivityLogs == nil {
		out.ActivityLogs = []ActivityLog{}
	}
	if out.ImportantDates == nil {
		out.ImportantDates = []ImportantDate{}
	}

	if wire.Category.IsIndividual() {
		ind := Individual{Tag: wire.AnimalID, Breed: wire.Breed, Gender: wire.Gender}
		if wire.BirthDate != nil {
			ind.BirthDate = *wire.BirthDate
		}
		out.Details = ind
	} else {
		batch := Batch{BatchID: wire.AnimalID, Strain: wire.Breed, StartDate: wire.BirthDate}
		if wire.Quantity != nil {
			batch.Quantity = *wire.Quantity
		}
		out.Details = batch
	}

	*l = out
	return nil
}
