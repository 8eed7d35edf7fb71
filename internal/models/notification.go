// internal/models/notification.go
package models

type NotificationType string

const (
	NotificationApplication         NotificationType = "APPLICATION"
	NotificationApplicationAccepted NotificationType = "APPLICATION_ACCEPTED"
	NotificationApplicationRejected NotificationType = "APPLICATION_REJECTED"
	NotificationNewApplication      NotificationType = "NEW_APPLICATION"
	NotificationGeneral             NotificationType = "GENERAL"
)

// Notification is an at-least-once, best-effort record of a workflow event.
// Records are written undispatched in the same transaction as the primary
// write; the outbox drainer flips Dispatched afterwards.
type Notification struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	RelatedID    string `json:"relatedId"` // application or post id
	Read         bool   `json:"read"`
	Dispatched   bool   `json:"dispatched"`
	DispatchedAt string `json:"dispatchedAt,omitempty"` // ISO 8601
	CreatedAt    string `json:"createdAt"`              // ISO 8601
}

// TypeEnum returns the typed notification kind, falling back to GENERAL
// for unknown values.
func (n *Notification) TypeEnum() NotificationType {
	switch NotificationType(n.Type) {
	case NotificationApplication, NotificationApplicationAccepted,
		NotificationApplicationRejected, NotificationNewApplication,
		NotificationGeneral:
		return NotificationType(n.Type)
	default:
		return NotificationGeneral
	}
}
