// internal/notify/drainer.go
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"collabflow/internal/common/config"
	"collabflow/internal/common/errors"
	"collabflow/internal/common/logger"
	"collabflow/internal/common/metrics"
	"collabflow/internal/repository"
)

// unreadKey is the per-user unread counter key in redis.
func unreadKey(userID string) string {
	return fmt.Sprintf("notif:unread:%s", userID)
}

// Drainer polls the notification outbox and marks records dispatched. The
// unread counter in redis is a derived cache: losing it means a stale badge
// count, never a lost notification.
type Drainer struct {
	repo   *repository.Repository
	rdb    *redis.Client
	logger logger.Logger
	cfg    config.DispatcherConfig
	now    func() time.Time
}

func NewDrainer(repo *repository.Repository, rdb *redis.Client, cfg config.DispatcherConfig, log logger.Logger) *Drainer {
	return &Drainer{
		repo:   repo,
		rdb:    rdb,
		logger: log.WithFields(map[string]interface{}{"component": "drainer"}),
		cfg:    cfg,
		now:    time.Now,
	}
}

// Run polls the outbox until ctx is cancelled.
func (d *Drainer) Run(ctx context.Context) {
	interval := config.GetDuration(d.cfg.PollInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger.Info("Outbox drainer started", map[string]interface{}{
		"pollInterval": interval.String(),
		"batchSize":    d.cfg.BatchSize,
	})

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox drainer stopped", nil)
			return
		case <-ticker.C:
			drainCtx, cancel := context.WithTimeout(ctx, config.GetDuration(d.cfg.DrainTimeout))
			if _, err := d.DrainOnce(drainCtx); err != nil {
				d.logger.WithError(err).Error("Outbox drain failed", nil)
			}
			cancel()
		}
	}
}

// DrainOnce processes one batch of undispatched notifications and returns
// the number dispatched.
func (d *Drainer) DrainOnce(ctx context.Context) (int, error) {
	pending, err := d.repo.ListUndispatchedNotifications(ctx, d.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	metrics.OutboxBacklog.Set(float64(len(pending)))

	dispatched := 0
	for _, n := range pending {
		won, err := d.repo.MarkNotificationDispatched(ctx, n.ID, d.now().UTC().Format(time.RFC3339))
		if err != nil {
			return dispatched, err
		}
		if !won {
			// Another drainer got there first.
			continue
		}
		dispatched++
		metrics.NotificationsDispatched.WithLabelValues(n.Type).Inc()
		d.bumpUnread(ctx, n.UserID)
	}

	if dispatched > 0 {
		d.logger.Info("Drained notification outbox", map[string]interface{}{
			"dispatched": dispatched,
			"backlog":    len(pending) - dispatched,
		})
	}
	return dispatched, nil
}

// bumpUnread increments the recipient's unread counter. Redis being down
// only costs the badge count.
func (d *Drainer) bumpUnread(ctx context.Context, userID string) {
	key := unreadKey(userID)
	if err := d.rdb.Incr(ctx, key).Err(); err != nil {
		d.logger.WithError(err).Warn("Failed to bump unread counter", map[string]interface{}{
			"userId": userID,
		})
		return
	}
	if d.cfg.CounterTTLSec > 0 {
		d.rdb.Expire(ctx, key, time.Duration(d.cfg.CounterTTLSec)*time.Second)
	}
}

// UnreadCount returns the cached unread notification count for a user.
// A missing key reads as zero.
func (d *Drainer) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := d.rdb.Get(ctx, unreadKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, errors.NewStoreUnavailableError(err)
	}
	return count, nil
}

// MarkRead marks a notification read for callerID and decrements the cached
// unread counter, flooring at zero.
func (d *Drainer) MarkRead(ctx context.Context, notificationID, callerID string) error {
	if err := d.repo.MarkNotificationRead(ctx, notificationID, callerID); err != nil {
		return err
	}
	key := unreadKey(callerID)
	if remaining, err := d.rdb.Decr(ctx, key).Result(); err != nil {
		d.logger.WithError(err).Warn("Failed to decrement unread counter", map[string]interface{}{
			"userId": callerID,
		})
	} else if remaining < 0 {
		d.rdb.Set(ctx, key, 0, 0)
	}
	return nil
}
