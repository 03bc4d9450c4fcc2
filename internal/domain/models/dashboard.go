package models

import "time"

// PenOccupancy pairs a pen with the number of records assigned to it.
type PenOccupancy struct {
	Pen   Pen `json:"pen"`
	Count int `json:"count"`
}

// UpcomingDate is an important date flattened with the animal it belongs to.
type UpcomingDate struct {
	ImportantDate
	LivestockID string `json:"livestockId"`
	AnimalLabel string `json:"animalLabel"`
}

// Dashboard represents the aggregated overview shown on the home screen.
type Dashboard struct {
	TotalLivestock int            `json:"totalLivestock"`
	TotalPens      int            `json:"totalPens"`
	PenOccupancy   []PenOccupancy `json:"penOccupancy"`
	UpcomingDates  []UpcomingDate `json:"upcomingDates"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}
