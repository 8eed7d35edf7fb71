// internal/models/application.go
package models

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

type Application struct {
	ID            string `json:"id"`
	PostID        string `json:"postId"`
	PostTitle     string `json:"postTitle"` // snapshot taken at apply time
	DeveloperID   string `json:"developerId"`
	DeveloperName string `json:"developerName"`
	Proposal      string `json:"proposal"`
	Status        string `json:"status"`
	AppliedAt     string `json:"appliedAt"` // ISO 8601
}

// StatusEnum returns the typed status, falling back to PENDING for
// unknown values.
func (a *Application) StatusEnum() ApplicationStatus {
	switch ApplicationStatus(a.Status) {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
		return ApplicationStatus(a.Status)
	default:
		return ApplicationPending
	}
}

// Decided reports whether the application has reached a terminal status.
// Both ACCEPTED and REJECTED are terminal; there is no way back to PENDING.
func (a *Application) Decided() bool {
	return a.StatusEnum() != ApplicationPending
}
