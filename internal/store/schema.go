// internal/store/schema.go
package store

import (
	"context"

	"collabflow/internal/common/errors"
)

// ApplicationUniqueIndex backs the at-most-one-application-per-(post,
// developer) invariant at the store level, closing the check-then-act race
// between concurrent applies.
const ApplicationUniqueIndex = "documents_applications_post_developer_key"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT        NOT NULL,
		id         TEXT        NOT NULL,
		data       JSONB       NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, id)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS documents_applications_post_developer_key
		ON documents ((data->>'postId'), (data->>'developerId'))
		WHERE collection = 'applications'`,
	`CREATE INDEX IF NOT EXISTS documents_collection_user_idx
		ON documents (collection, (data->>'userId'))`,
	`CREATE INDEX IF NOT EXISTS documents_applications_post_idx
		ON documents ((data->>'postId'))
		WHERE collection = 'applications'`,
	`CREATE INDEX IF NOT EXISTS documents_notifications_outbox_idx
		ON documents (created_at)
		WHERE collection = 'notifications' AND (data->>'dispatched') = 'false'`,
}

// EnsureSchema creates the documents table and its indexes if absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.NewStoreUnavailableError(err)
		}
	}
	s.logger.Info("document store schema ensured", nil)
	return nil
}
