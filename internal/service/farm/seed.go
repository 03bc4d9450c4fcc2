package farm

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/stockwise/internal/domain/models"
)

const seedDateLayout = "2006-01-02"

//go:embed seed.yaml
var seedYAML []byte

// Dataset is a full set of collections, used for the built-in defaults.
type Dataset struct {
	Livestock []models.Livestock
	Pens      []models.Pen
}

type seedFile struct {
	Pens      []seedPen       `yaml:"pens"`
	Livestock []seedLivestock `yaml:"livestock"`
}

type seedPen struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	AllowedCategory string `yaml:"allowedCategory"`
}

type seedLivestock struct {
	ID             string          `yaml:"id"`
	Category       string          `yaml:"category"`
	AnimalID       string          `yaml:"animalId"`
	Breed          string          `yaml:"breed"`
	BirthDate      string          `yaml:"birthDate"`
	Gender         string          `yaml:"gender"`
	Quantity       int             `yaml:"quantity"`
	PenID          string          `yaml:"penId"`
	HealthRecords  string          `yaml:"healthRecords"`
	ImageURL       string          `yaml:"imageUrl"`
	ActivityLogs   []seedActivity  `yaml:"activityLogs"`
	ImportantDates []seedDateEntry `yaml:"importantDates"`
}

type seedActivity struct {
	ID          string `yaml:"id"`
	Date        string `yaml:"date"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

type seedDateEntry struct {
	ID        string `yaml:"id"`
	Date      string `yaml:"date"`
	EventName string `yaml:"eventName"`
	Notes     string `yaml:"notes"`
}

// DefaultDataset decodes the embedded default collections. Every call returns
// fresh slices.
func DefaultDataset() (Dataset, error) {
	var raw seedFile
	if err := yaml.Unmarshal(seedYAML, &raw); err != nil {
		return Dataset{}, fmt.Errorf("parse seed: %w", err)
	}

	ds := Dataset{
		Livestock: make([]models.Livestock, 0, len(raw.Livestock)),
		Pens:      make([]models.Pen, 0, len(raw.Pens)),
	}

	for _, p := range raw.Pens {
		pen := models.Pen{ID: p.ID, Name: p.Name, Description: p.Description}
		if p.AllowedCategory != "" {
			category, err := models.ParseCategory(p.AllowedCategory)
			if err != nil {
				return Dataset{}, fmt.Errorf("seed pen %s: %w", p.ID, err)
			}
			pen.AllowedCategory = &category
		}
		ds.Pens = append(ds.Pens, pen)
	}

	for _, l := range raw.Livestock {
		animal, err := l.toModel()
		if err != nil {
			return Dataset{}, fmt.Errorf("seed livestock %s: %w", l.ID, err)
		}
		ds.Livestock = append(ds.Livestock, animal)
	}

	return ds, nil
}

func (l seedLivestock) toModel() (models.Livestock, error) {
	category, err := models.ParseCategory(l.Category)
	if err != nil {
		return models.Livestock{}, err
	}

	animal := models.Livestock{
		ID:             l.ID,
		Category:       category,
		PenID:          l.PenID,
		HealthRecords:  l.HealthRecords,
		ImageURL:       l.ImageURL,
		ActivityLogs:   []models.ActivityLog{},
		ImportantDates: []models.ImportantDate{},
	}

	var birth *time.Time
	if l.BirthDate != "" {
		parsed, err := time.Parse(seedDateLayout, l.BirthDate)
		if err != nil {
			return models.Livestock{}, err
		}
		birth = &parsed
	}

	if category.IsIndividual() {
		gender, err := models.ParseGender(l.Gender)
		if err != nil {
			return models.Livestock{}, err
		}
		ind := models.Individual{Tag: l.AnimalID, Breed: l.Breed, Gender: gender}
		if birth != nil {
			ind.BirthDate = *birth
		}
		animal.Details = ind
	} else {
		animal.Details = models.Batch{BatchID: l.AnimalID, Strain: l.Breed, Quantity: l.Quantity, StartDate: birth}
	}

	for _, a := range l.ActivityLogs {
		date, err := time.Parse(seedDateLayout, a.Date)
		if err != nil {
			return models.Livestock{}, err
		}
		activityType, err := models.ParseActivityType(a.Type)
		if err != nil {
			return models.Livestock{}, err
		}
		animal.ActivityLogs = append(animal.ActivityLogs, models.ActivityLog{ID: a.ID, Date: date, Type: activityType, Description: a.Description})
	}
	for _, d := range l.ImportantDates {
		date, err := time.Parse(seedDateLayout, d.Date)
		if err != nil {
			return models.Livestock{}, err
		}
		animal.ImportantDates = append(animal.ImportantDates, models.ImportantDate{ID: d.ID, Date: date, EventName: d.EventName, Notes: d.Notes})
	}

	sortActivityLogs(animal.ActivityLogs)
	sortImportantDates(animal.ImportantDates)
	return animal, animal.Validate()
}
