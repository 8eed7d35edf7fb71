// internal/store/store_test.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabflow/internal/common/errors"
	"collabflow/internal/common/logger"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, logger.NewTestLogger(t)), mock
}

func postDoc(id, authorID string) map[string]interface{} {
	return map[string]interface{}{
		"id":       id,
		"authorId": authorID,
		"title":    "Fix the flaky importer",
		"postType": "PROBLEM",
	}
}

func TestCreate_InsertsDocument(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs("posts", "post-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := st.Create(context.Background(), "posts", postDoc("post-1", "user-1"))
	assert.NoError(t, err)
	assert.Equal(t, "post-1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_GeneratesMissingID(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs("posts", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	doc := postDoc("", "user-1")
	delete(doc, "id")
	id, err := st.Create(context.Background(), "posts", doc)
	assert.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, doc["id"])
}

func TestCreate_SchemaRejectsInvalidDocument(t *testing.T) {
	st, mock := newTestStore(t)

	doc := postDoc("post-1", "user-1")
	delete(doc, "title")
	_, err := st.Create(context.Background(), "posts", doc)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidationFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolationOnApplicationIndex(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(`INSERT INTO documents`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: ApplicationUniqueIndex})

	doc := map[string]interface{}{
		"id":          "app-1",
		"postId":      "post-1",
		"developerId": "dev-1",
		"proposal":    "I can do this",
		"status":      "PENDING",
	}
	_, err := st.Create(context.Background(), "applications", doc)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDuplicateApplication))
}

func TestCreate_UniqueViolationOnPrimaryKey(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(`INSERT INTO documents`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "documents_pkey"})

	_, err := st.Create(context.Background(), "posts", postDoc("post-1", "user-1"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidationFailed))
}

func TestGet_NotFound(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT data FROM documents`).
		WithArgs("posts", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := st.Get(context.Background(), "posts", "missing")
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestGet_DecodesDocument(t *testing.T) {
	st, mock := newTestStore(t)

	data, _ := json.Marshal(postDoc("post-1", "user-1"))
	mock.ExpectQuery(`SELECT data FROM documents`).
		WithArgs("posts", "post-1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(data))

	doc, err := st.Get(context.Background(), "posts", "post-1")
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, doc.Decode(&decoded))
	assert.Equal(t, "user-1", decoded["authorId"])
}

func TestQuery_FiltersInSortedFieldOrder(t *testing.T) {
	st, mock := newTestStore(t)

	// developerId sorts before postId, so it binds $2.
	mock.ExpectQuery(`SELECT id, data FROM documents WHERE collection = \$1 AND data->>'developerId' = \$2 AND data->>'postId' = \$3`).
		WithArgs("applications", "dev-1", "post-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}).
			AddRow("app-1", []byte(`{"id":"app-1","status":"PENDING"}`)))

	docs, err := st.Query(context.Background(), "applications", map[string]string{
		"postId":      "post-1",
		"developerId": "dev-1",
	})
	assert.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, "app-1", docs[0].ID)
}

func TestUpdate_NotFound(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(`UPDATE documents`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.Update(context.Background(), "posts", "missing", map[string]interface{}{"title": "x"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestUpdateWhere_GuardOutcome(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(`UPDATE documents`).
		WithArgs("applications", "app-1", sqlmock.AnyArg(), "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := st.UpdateWhere(context.Background(), "applications", "app-1",
		map[string]interface{}{"status": "ACCEPTED"},
		map[string]string{"status": "PENDING"})
	assert.NoError(t, err)
	assert.True(t, won)

	// Guard no longer holds: zero rows, no error.
	mock.ExpectExec(`UPDATE documents`).
		WithArgs("applications", "app-1", sqlmock.AnyArg(), "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err = st.UpdateWhere(context.Background(), "applications", "app-1",
		map[string]interface{}{"status": "REJECTED"},
		map[string]string{"status": "PENDING"})
	assert.NoError(t, err)
	assert.False(t, won)
}

func TestIncrementField_SingleStatement(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(`UPDATE documents\s+SET data = jsonb_set`).
		WithArgs("posts", "post-1", "applicationsCount", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := st.IncrementField(context.Background(), "posts", "post-1", "applicationsCount", 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementField_NotFound(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectExec(`UPDATE documents`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.IncrementField(context.Background(), "posts", "missing", "applicationsCount", 1)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestRunTx_CommitsOnSuccess(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE documents`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.RunTx(context.Background(), func(tx *Tx) error {
		return tx.IncrementField(context.Background(), "posts", "post-1", "applicationsCount", 1)
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunTx_RollsBackOnError(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT data FROM documents`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := st.RunTx(context.Background(), func(tx *Tx) error {
		_, err := tx.Get(context.Background(), "posts", "missing")
		return err
	})
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxGet_LocksRow(t *testing.T) {
	st, mock := newTestStore(t)

	data, _ := json.Marshal(postDoc("post-1", "user-1"))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT data FROM documents WHERE collection = \$1 AND id = \$2 FOR UPDATE`).
		WithArgs("posts", "post-1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(data))
	mock.ExpectCommit()

	err := st.RunTx(context.Background(), func(tx *Tx) error {
		_, err := tx.Get(context.Background(), "posts", "post-1")
		return err
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	st, mock := newTestStore(t)

	for range schemaStatements {
		mock.ExpectExec(`CREATE`).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	assert.NoError(t, st.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
