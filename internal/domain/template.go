package domain

import "time"

// ChecklistItem is one structured entry in a template's checklist.
type ChecklistItem struct {
	Task     string `json:"task"`
	Required bool   `json:"required"`
}

// OnboardingTemplate is department-scoped reference data: a checklist and
// equipment description. Surfaced to the modern UI as a knowledge-base
// article; no lifecycle beyond CRUD.
type OnboardingTemplate struct {
	ID                string
	Name              string
	DepartmentID      string
	PositionTypes     string
	ChecklistItems    []ChecklistItem
	RequiredEquipment string
	EstimatedDays     int
	IsActive          bool
	Created           time.Time
	Modified          time.Time
}
