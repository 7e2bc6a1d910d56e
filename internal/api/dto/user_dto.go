package dto

import "time"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsStaff  bool   `json:"is_staff"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse represents an account.
type UserResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsStaff bool   `json:"is_staff"`
}

// SettingsRequest payload for preference updates.
type SettingsRequest struct {
	EmailOnAssign bool `json:"email_on_assign"`
	EmailOnUpdate bool `json:"email_on_update"`
	ShowPending   bool `json:"show_pending"`
	ShowOverdue   bool `json:"show_overdue"`
	PageSize      int  `json:"page_size"`
}

// SettingsResponse represents stored preferences.
type SettingsResponse struct {
	UserID        string `json:"user_id"`
	EmailOnAssign bool   `json:"email_on_assign"`
	EmailOnUpdate bool   `json:"email_on_update"`
	ShowPending   bool   `json:"show_pending"`
	ShowOverdue   bool   `json:"show_overdue"`
	PageSize      int    `json:"page_size"`
}
