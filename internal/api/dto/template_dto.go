package dto

import (
	"time"

	"github.com/nxzen/ticketdesk/internal/domain"
)

// TemplateRequest payload for create/update.
type TemplateRequest struct {
	Name              string                 `json:"name"`
	DepartmentID      string                 `json:"department_id"`
	PositionTypes     string                 `json:"position_types"`
	ChecklistItems    []domain.ChecklistItem `json:"checklist_items"`
	RequiredEquipment string                 `json:"required_equipment"`
	EstimatedDays     int                    `json:"estimated_days"`
	IsActive          bool                   `json:"is_active"`
}

// TemplateResponse represents a knowledge-base template.
type TemplateResponse struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	DepartmentID      string                 `json:"department_id"`
	PositionTypes     string                 `json:"position_types"`
	ChecklistItems    []domain.ChecklistItem `json:"checklist_items"`
	RequiredEquipment string                 `json:"required_equipment"`
	EstimatedDays     int                    `json:"estimated_days"`
	IsActive          bool                   `json:"is_active"`
	Created           time.Time              `json:"created"`
	Modified          time.Time              `json:"modified"`
}
