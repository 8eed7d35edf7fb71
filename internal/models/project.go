// internal/models/project.go
package models

type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "PENDING"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectCompleted  ProjectStatus = "COMPLETED"
	ProjectCancelled  ProjectStatus = "CANCELLED"
)

// PendingProject is the engagement created when an application is accepted.
// Post and developer fields are point-in-time snapshots, not live references:
// a renamed post or user does not retroactively update historical projects.
type PendingProject struct {
	ID              string  `json:"id"`
	PostID          string  `json:"postId"`
	PostTitle       string  `json:"postTitle"`
	PostDescription string  `json:"postDescription"`
	AuthorID        string  `json:"authorId"`
	AuthorName      string  `json:"authorName"`
	DeveloperID     string  `json:"developerId"`
	DeveloperName   string  `json:"developerName"`
	ApplicationID   string  `json:"applicationId"`
	Status          string  `json:"status"`
	AcceptedAt      string  `json:"acceptedAt"`            // ISO 8601
	CompletedAt     *string `json:"completedAt,omitempty"` // ISO 8601
}

// StatusEnum returns the typed status, falling back to PENDING for
// unknown values.
func (p *PendingProject) StatusEnum() ProjectStatus {
	switch ProjectStatus(p.Status) {
	case ProjectPending, ProjectInProgress, ProjectCompleted, ProjectCancelled:
		return ProjectStatus(p.Status)
	default:
		return ProjectPending
	}
}

// ValidProjectTransition reports whether a project may move from one status
// to another. COMPLETED and CANCELLED are terminal.
func ValidProjectTransition(from, to ProjectStatus) bool {
	switch from {
	case ProjectPending:
		return to == ProjectInProgress || to == ProjectCancelled
	case ProjectInProgress:
		return to == ProjectCompleted || to == ProjectCancelled
	default:
		return false
	}
}
