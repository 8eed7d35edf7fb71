// internal/store/store.go
// Package store implements the document store adapter over PostgreSQL.
// Documents live in a single jsonb-backed table keyed by (collection, id);
// the SQL layer supplies the conditional-update and atomic-increment
// primitives the workflow engine needs to stay correct under concurrency.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"collabflow/internal/common/errors"
	"collabflow/internal/common/logger"
	"collabflow/internal/common/validation"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Document is a raw record as stored: its id plus the JSON payload.
type Document struct {
	ID   string
	Data []byte
}

// Decode unmarshals the document payload into out.
func (d Document) Decode(out interface{}) error {
	return json.Unmarshal(d.Data, out)
}

// Ops is the operation set shared by the store and a live transaction.
// The repository layer is written against Ops so the same accessor works
// standalone and inside RunTx.
type Ops interface {
	Create(ctx context.Context, collection string, doc map[string]interface{}) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, filters map[string]string) ([]Document, error)
	Update(ctx context.Context, collection, id string, changes map[string]interface{}) error
	UpdateWhere(ctx context.Context, collection, id string, changes map[string]interface{}, guards map[string]string) (bool, error)
	IncrementField(ctx context.Context, collection, id, field string, delta int) error
}

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

// querier abstracts *sql.DB and *sql.Tx so each operation runs both
// standalone and inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Create inserts a document. A missing or empty "id" field is populated with
// a generated uuid. The document is validated against the collection schema
// before insert. Returns the document id.
func (s *Store) Create(ctx context.Context, collection string, doc map[string]interface{}) (string, error) {
	return create(ctx, s.db, collection, doc)
}

// Get fetches a single document, or NOT_FOUND.
func (s *Store) Get(ctx context.Context, collection, id string) (Document, error) {
	return get(ctx, s.db, collection, id, false)
}

// Query returns all documents in a collection matching every equality
// filter. Results are unordered and reflect store state at execution time.
func (s *Store) Query(ctx context.Context, collection string, filters map[string]string) ([]Document, error) {
	return query(ctx, s.db, collection, filters, false)
}

// Update applies a partial, last-writer-wins field merge to a document.
func (s *Store) Update(ctx context.Context, collection, id string, changes map[string]interface{}) error {
	return update(ctx, s.db, collection, id, changes)
}

// UpdateWhere applies a partial update only if every guard field still holds
// its expected value. Returns false when the guard failed (the document
// exists but a concurrent writer got there first) and NOT_FOUND when the
// document is absent.
func (s *Store) UpdateWhere(ctx context.Context, collection, id string, changes map[string]interface{}, guards map[string]string) (bool, error) {
	return updateWhere(ctx, s.db, collection, id, changes, guards)
}

// IncrementField atomically adds delta to an integer field in a single
// statement, so concurrent increments never lose updates.
func (s *Store) IncrementField(ctx context.Context, collection, id, field string, delta int) error {
	return incrementField(ctx, s.db, collection, id, field, delta)
}

// Tx exposes store operations bound to one serializable transaction.
// Reads inside the transaction lock the matched rows, making
// check-then-act sequences race-free.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Create(ctx context.Context, collection string, doc map[string]interface{}) (string, error) {
	return create(ctx, t.tx, collection, doc)
}

func (t *Tx) Get(ctx context.Context, collection, id string) (Document, error) {
	return get(ctx, t.tx, collection, id, true)
}

func (t *Tx) Query(ctx context.Context, collection string, filters map[string]string) ([]Document, error) {
	return query(ctx, t.tx, collection, filters, true)
}

func (t *Tx) Update(ctx context.Context, collection, id string, changes map[string]interface{}) error {
	return update(ctx, t.tx, collection, id, changes)
}

func (t *Tx) UpdateWhere(ctx context.Context, collection, id string, changes map[string]interface{}, guards map[string]string) (bool, error) {
	return updateWhere(ctx, t.tx, collection, id, changes, guards)
}

func (t *Tx) IncrementField(ctx context.Context, collection, id, field string, delta int) error {
	return incrementField(ctx, t.tx, collection, id, field, delta)
}

var (
	_ Ops = (*Store)(nil)
	_ Ops = (*Tx)(nil)
)

// RunTx executes fn inside a serializable transaction, committing on nil
// and rolling back otherwise.
func (s *Store) RunTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return errors.NewStoreUnavailableError(err)
	}
	defer tx.Rollback()

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapSQLError(err)
	}
	return nil
}

func create(ctx context.Context, q querier, collection string, doc map[string]interface{}) (string, error) {
	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.New().String()
		doc["id"] = id
	}

	if err := validation.ValidateDocument(collection, doc); err != nil {
		return "", errors.NewValidationFailedError(err.Error())
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", errors.NewValidationFailedError(fmt.Sprintf("marshal document: %v", err))
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)`,
		collection, id, data,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == ApplicationUniqueIndex {
				postID, _ := doc["postId"].(string)
				developerID, _ := doc["developerId"].(string)
				return "", errors.NewDuplicateApplicationError(postID, developerID)
			}
			return "", errors.NewValidationFailedError(
				fmt.Sprintf("document %s/%s already exists", collection, id))
		}
		return "", mapSQLError(err)
	}
	return id, nil
}

func get(ctx context.Context, q querier, collection, id string, forUpdate bool) (Document, error) {
	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var data []byte
	err := q.QueryRowContext(ctx, query, collection, id).Scan(&data)
	if err == sql.ErrNoRows {
		return Document{}, errors.NewNotFoundError(collection, id)
	}
	if err != nil {
		return Document{}, mapSQLError(err)
	}
	return Document{ID: id, Data: data}, nil
}

func query(ctx context.Context, q querier, collection string, filters map[string]string, forUpdate bool) ([]Document, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT id, data FROM documents WHERE collection = $1`)

	// Field names are compile-time constants from the repository layer,
	// never caller input; only values are parameterized.
	args := []interface{}{collection}
	for _, field := range sortedKeys(filters) {
		args = append(args, filters[field])
		fmt.Fprintf(&sb, ` AND data->>'%s' = $%d`, field, len(args))
	}
	if forUpdate {
		sb.WriteString(` FOR UPDATE`)
	}

	rows, err := q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Data); err != nil {
			return nil, mapSQLError(err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLError(err)
	}
	return docs, nil
}

func update(ctx context.Context, q querier, collection, id string, changes map[string]interface{}) error {
	patch, err := json.Marshal(changes)
	if err != nil {
		return errors.NewValidationFailedError(fmt.Sprintf("marshal changes: %v", err))
	}

	res, err := q.ExecContext(ctx, `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2`,
		collection, id, patch,
	)
	if err != nil {
		return mapSQLError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapSQLError(err)
	}
	if affected == 0 {
		return errors.NewNotFoundError(collection, id)
	}
	return nil
}

func updateWhere(ctx context.Context, q querier, collection, id string, changes map[string]interface{}, guards map[string]string) (bool, error) {
	patch, err := json.Marshal(changes)
	if err != nil {
		return false, errors.NewValidationFailedError(fmt.Sprintf("marshal changes: %v", err))
	}

	sb := strings.Builder{}
	sb.WriteString(`
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2`)

	args := []interface{}{collection, id, patch}
	for _, field := range sortedKeys(guards) {
		args = append(args, guards[field])
		fmt.Fprintf(&sb, ` AND data->>'%s' = $%d`, field, len(args))
	}

	res, err := q.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return false, mapSQLError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, mapSQLError(err)
	}
	return affected > 0, nil
}

func incrementField(ctx context.Context, q querier, collection, id, field string, delta int) error {
	res, err := q.ExecContext(ctx, `
		UPDATE documents
		SET data = jsonb_set(data, ARRAY[$3], to_jsonb(COALESCE((data->>$3)::int, 0) + $4), true),
		    updated_at = now()
		WHERE collection = $1 AND id = $2`,
		collection, id, field, delta,
	)
	if err != nil {
		return mapSQLError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapSQLError(err)
	}
	if affected == 0 {
		return errors.NewNotFoundError(collection, id)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func uniqueViolation(err error) (string, bool) {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}

func mapSQLError(err error) *errors.StandardError {
	return errors.NewStoreUnavailableError(err)
}
