// internal/notify/builders_test.go
package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"collabflow/internal/models"
)

func TestNewApplicationNotice(t *testing.T) {
	post := &models.Post{ID: "post-1", AuthorID: "author-1", Title: "Build a CSV importer"}
	app := &models.Application{ID: "app-1", DeveloperName: "Ravi"}

	n := NewApplicationNotice(post, app, "2026-08-30T12:00:00Z")
	assert.Equal(t, "author-1", n.UserID)
	assert.Equal(t, "APPLICATION", n.Type)
	assert.Equal(t, "New Application", n.Title)
	assert.Equal(t, "Ravi applied to your post: Build a CSV importer", n.Message)
	assert.Equal(t, "post-1", n.RelatedID)
	assert.False(t, n.Dispatched)
	assert.False(t, n.Read)
}

func TestNewAcceptedNotice(t *testing.T) {
	app := &models.Application{ID: "app-1", DeveloperID: "dev-1", PostTitle: "Build a CSV importer"}

	n := NewAcceptedNotice(app, "2026-08-30T12:00:00Z")
	assert.Equal(t, "dev-1", n.UserID)
	assert.Equal(t, "APPLICATION_ACCEPTED", n.Type)
	assert.Equal(t, "Application Accepted!", n.Title)
	assert.Equal(t, `Congratulations! Your application for "Build a CSV importer" has been accepted.`, n.Message)
	assert.Equal(t, "app-1", n.RelatedID)
}

func TestNewRejectedNotice(t *testing.T) {
	app := &models.Application{ID: "app-1", DeveloperID: "dev-1", PostTitle: "Build a CSV importer"}

	n := NewRejectedNotice(app, "2026-08-30T12:00:00Z")
	assert.Equal(t, "dev-1", n.UserID)
	assert.Equal(t, "APPLICATION_REJECTED", n.Type)
	assert.Equal(t, "Application Rejected", n.Title)
	assert.Equal(t, `Your application for "Build a CSV importer" has been rejected.`, n.Message)
	assert.Equal(t, "app-1", n.RelatedID)
}
