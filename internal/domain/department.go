package domain

import (
	"fmt"
	"time"
)

// Department is an organizational unit owning tickets. Exposed to the modern
// API under the "category" name; both names address the same entity.
type Department struct {
	ID                  string
	Title               string
	Slug                string
	EmailAddress        string
	Description         string
	ManagerID           *string
	IsActive            bool
	AutoAssignToManager bool
	Created             time.Time
	Modified            time.Time
}

// FromAddress formats the outbound mail sender for this department, falling
// back to the service-wide default when no address is configured.
func (d *Department) FromAddress(defaultFrom string) string {
	if d.EmailAddress == "" {
		return fmt.Sprintf("NO DEPARTMENT EMAIL DEFINED <%s>", defaultFrom)
	}
	return fmt.Sprintf("%s <%s>", d.Title, d.EmailAddress)
}
