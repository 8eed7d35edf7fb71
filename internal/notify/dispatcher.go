// internal/notify/dispatcher.go
// Package notify creates and dispatches notification records. Workflow
// operations write records through the outbox inside their own transaction;
// the Dispatcher here is the direct path for ad-hoc notifications, and the
// Drainer moves outbox records to dispatched.
package notify

import (
	"context"
	"time"

	"collabflow/internal/common/logger"
	"collabflow/internal/models"
	"collabflow/internal/repository"
)

// Dispatcher creates notification records outside a workflow transaction.
type Dispatcher struct {
	repo   *repository.Repository
	logger logger.Logger
	now    func() time.Time
}

func NewDispatcher(repo *repository.Repository, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		repo:   repo,
		logger: log.WithFields(map[string]interface{}{"component": "dispatcher"}),
		now:    time.Now,
	}
}

// Notify writes a notification record for a user. Failures are returned for
// visibility but callers treat notification failure as non-fatal: the
// triggering operation has already succeeded.
func (d *Dispatcher) Notify(ctx context.Context, userID string, kind models.NotificationType, title, message, relatedID string) (*models.Notification, error) {
	n := &models.Notification{
		UserID:    userID,
		Type:      string(kind),
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
		CreatedAt: d.now().UTC().Format(time.RFC3339),
	}
	if err := d.repo.CreateNotification(ctx, n); err != nil {
		d.logger.WithError(err).Error("Failed to create notification", map[string]interface{}{
			"userId": userID,
			"type":   string(kind),
		})
		return nil, err
	}
	d.logger.Debug("Notification created", map[string]interface{}{
		"notificationId": n.ID,
		"userId":         userID,
		"type":           string(kind),
	})
	return n, nil
}
