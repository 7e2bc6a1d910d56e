package domain

import "time"

// User is an operator account. Staff users may be assigned tickets.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsStaff      bool
	IsActive     bool
	Created      time.Time
	Modified     time.Time
}
