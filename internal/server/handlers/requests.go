package handlers

import (
	"fmt"
	"strings"

	"github.com/mamadbah2/stockwise/internal/domain/models"
)

// livestockRequest mirrors the registration form. For batch categories
// animalId is the batch identifier, breed the strain and birthDate the
// optional start date.
type livestockRequest struct {
	LivestockType string `json:"livestockType" binding:"required"`
	AnimalID      string `json:"animalId" binding:"required"`
	Breed         string `json:"breed" binding:"required"`
	BirthDate     string `json:"birthDate"`
	Gender        string `json:"gender"`
	Quantity      int    `json:"quantity"`
	PenID         string `json:"penId"`
	HealthRecords string `json:"healthRecords"`
}

func (r livestockRequest) toModel() (models.Livestock, error) {
	category, err := models.ParseCategory(r.LivestockType)
	if err != nil {
		return models.Livestock{}, err
	}

	animal := models.Livestock{
		Category:      category,
		PenID:         strings.TrimSpace(r.PenID),
		HealthRecords: r.HealthRecords,
	}

	if category.IsIndividual() {
		if r.BirthDate == "" {
			return models.Livestock{}, fmt.Errorf("%w: birth date is required", models.ErrInvalidLivestock)
		}
		birth, err := parseDate(r.BirthDate)
		if err != nil {
			return models.Livestock{}, fmt.Errorf("%w: %v", models.ErrInvalidLivestock, err)
		}
		gender, err := models.ParseGender(r.Gender)
		if err != nil {
			return models.Livestock{}, err
		}
		animal.Details = models.Individual{Tag: r.AnimalID, Breed: r.Breed, BirthDate: birth, Gender: gender}
		return animal, animal.Validate()
	}

	batch := models.Batch{BatchID: r.AnimalID, Strain: r.Breed, Quantity: r.Quantity}
	if r.BirthDate != "" {
		start, err := parseDate(r.BirthDate)
		if err != nil {
			return models.Livestock{}, fmt.Errorf("%w: %v", models.ErrInvalidLivestock, err)
		}
		batch.StartDate = &start
	}
	animal.Details = batch
	return animal, animal.Validate()
}

type activityRequest struct {
	Date        string `json:"date" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description" binding:"required,max=200"`
}

func (r activityRequest) toModel() (models.ActivityLog, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return models.ActivityLog{}, fmt.Errorf("%w: %v", models.ErrInvalidEntry, err)
	}
	activityType, err := models.ParseActivityType(r.Type)
	if err != nil {
		return models.ActivityLog{}, err
	}
	entry := models.ActivityLog{Date: date, Type: activityType, Description: strings.TrimSpace(r.Description)}
	return entry, entry.Validate()
}

type importantDateRequest struct {
	Date      string `json:"date" binding:"required"`
	EventName string `json:"eventName" binding:"required"`
	Notes     string `json:"notes"`
}

func (r importantDateRequest) toModel() (models.ImportantDate, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return models.ImportantDate{}, fmt.Errorf("%w: %v", models.ErrInvalidEntry, err)
	}
	entry := models.ImportantDate{Date: date, EventName: strings.TrimSpace(r.EventName), Notes: strings.TrimSpace(r.Notes)}
	return entry, entry.Validate()
}

// penRequest leaves a pen flexible when allowedLivestockType is empty or "any".
type penRequest struct {
	Name                 string `json:"name" binding:"required"`
	Description          string `json:"description"`
	AllowedLivestockType string `json:"allowedLivestockType"`
}

func (r penRequest) toModel() (models.Pen, error) {
	pen := models.Pen{Name: strings.TrimSpace(r.Name), Description: strings.TrimSpace(r.Description)}

	allowed := strings.TrimSpace(r.AllowedLivestockType)
	if allowed != "" && !strings.EqualFold(allowed, "any") {
		category, err := models.ParseCategory(allowed)
		if err != nil {
			return models.Pen{}, fmt.Errorf("%w: %v", models.ErrInvalidPen, err)
		}
		pen.AllowedCategory = models.CategoryPtr(category)
	}
	return pen, pen.Validate()
}
