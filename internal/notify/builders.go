// internal/notify/builders.go
package notify

import (
	"fmt"

	"collabflow/internal/models"
)

// NewApplicationNotice tells a post author that a developer applied.
func NewApplicationNotice(post *models.Post, app *models.Application, createdAt string) *models.Notification {
	return &models.Notification{
		UserID:    post.AuthorID,
		Type:      string(models.NotificationApplication),
		Title:     "New Application",
		Message:   fmt.Sprintf("%s applied to your post: %s", app.DeveloperName, post.Title),
		RelatedID: post.ID,
		CreatedAt: createdAt,
	}
}

// NewAcceptedNotice tells a developer their application was accepted.
func NewAcceptedNotice(app *models.Application, createdAt string) *models.Notification {
	return &models.Notification{
		UserID:    app.DeveloperID,
		Type:      string(models.NotificationApplicationAccepted),
		Title:     "Application Accepted!",
		Message:   fmt.Sprintf("Congratulations! Your application for %q has been accepted.", app.PostTitle),
		RelatedID: app.ID,
		CreatedAt: createdAt,
	}
}

// NewRejectedNotice tells a developer their application was rejected.
func NewRejectedNotice(app *models.Application, createdAt string) *models.Notification {
	return &models.Notification{
		UserID:    app.DeveloperID,
		Type:      string(models.NotificationApplicationRejected),
		Title:     "Application Rejected",
		Message:   fmt.Sprintf("Your application for %q has been rejected.", app.PostTitle),
		RelatedID: app.ID,
		CreatedAt: createdAt,
	}
}
