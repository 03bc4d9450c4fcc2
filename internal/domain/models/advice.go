package models

// CareStrategyRequest is the input to the care-strategy advisor.
type CareStrategyRequest struct {
	HealthRecords           string `json:"healthRecords" binding:"required"`
	EnvironmentalConditions string `json:"environmentalConditions" binding:"required"`
}

// CareStrategySuggestion is the advisor's answer.
type CareStrategySuggestion struct {
	CareStrategies string `json:"careStrategies"`
	Reasoning      string `json:"reasoning"`
}
