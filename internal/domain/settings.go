package domain

// PageSizeChoices are the allowed list page sizes.
var PageSizeChoices = []int{10, 25, 50, 100}

// DefaultPageSize applies when a user has no explicit preference.
const DefaultPageSize = 25

// OnboardingSettings holds per-user notification and display preferences.
// Provisioned explicitly when the user is registered, and get-or-created on
// first read for accounts that predate provisioning.
type OnboardingSettings struct {
	UserID        string
	EmailOnAssign bool
	EmailOnUpdate bool
	ShowPending   bool
	ShowOverdue   bool
	PageSize      int
}

// NewDefaultSettings returns the defaults applied at user provisioning.
func NewDefaultSettings(userID string) *OnboardingSettings {
	return &OnboardingSettings{
		UserID:        userID,
		EmailOnAssign: true,
		EmailOnUpdate: true,
		ShowPending:   true,
		ShowOverdue:   true,
		PageSize:      DefaultPageSize,
	}
}

// ValidPageSize reports whether n is an allowed page size.
func ValidPageSize(n int) bool {
	for _, c := range PageSizeChoices {
		if n == c {
			return true
		}
	}
	return false
}
