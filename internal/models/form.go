package models

import "time"

// form kinds
const (
	FormKindContact     = "contact"
	FormKindVolunteer   = "volunteer"
	FormKindPartnership = "partnership"
)

// FormSubmission is a contact, volunteer or partnership form entry
type FormSubmission struct {
	ID          uint64
	Kind        string
	Name        string
	Email       string
	Fields      map[string]string
	SubmittedAt time.Time
}
