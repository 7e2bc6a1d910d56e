package dto

import "time"

// DepartmentRequest payload for create/update.
type DepartmentRequest struct {
	Title               string  `json:"title"`
	EmailAddress        string  `json:"email_address"`
	Description         string  `json:"description"`
	ManagerID           *string `json:"manager_id"`
	IsActive            bool    `json:"is_active"`
	AutoAssignToManager bool    `json:"auto_assign_to_manager"`
}

// DepartmentResponse represents a department (category) record.
type DepartmentResponse struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Slug                string    `json:"slug"`
	EmailAddress        string    `json:"email_address"`
	Description         string    `json:"description"`
	ManagerID           *string   `json:"manager_id"`
	IsActive            bool      `json:"is_active"`
	AutoAssignToManager bool      `json:"auto_assign_to_manager"`
	Created             time.Time `json:"created"`
	Modified            time.Time `json:"modified"`
}
