package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giovaniif/items/domain/item"
)

func newPostgresRepository(t *testing.T) (*ItemRepositoryPostgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewItemRepositoryPostgres(db, "items"), mock
}

func TestItemRepositoryPostgresGet(t *testing.T) {
	repo, mock := newPostgresRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM "items" WHERE item_id = $1`)).
		WithArgs("foo").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{"name": "A"}`)))

	got, err := repo.GetItem(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "A"}, got.Data)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepositoryPostgresGetMissing(t *testing.T) {
	repo, mock := newPostgresRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM "items"`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetItem(context.Background(), "missing")
	require.ErrorIs(t, err, item.ErrNotFound)
}

func TestItemRepositoryPostgresSave(t *testing.T) {
	repo, mock := newPostgresRepository(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "items" (item_id, payload) VALUES ($1, $2)`)).
		WithArgs("foo", `{"name":"A"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveItem(context.Background(), &item.Item{Id: "foo", Data: map[string]any{"name": "A"}}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepositoryPostgresDeleteError(t *testing.T) {
	repo, mock := newPostgresRepository(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "items" WHERE item_id = $1`)).
		WithArgs("foo").
		WillReturnError(errors.New("connection reset"))

	err := repo.DeleteItem(context.Background(), "foo")
	require.ErrorIs(t, err, item.ErrStore)
}

func TestItemRepositoryPostgresEnsureTable(t *testing.T) {
	repo, mock := newPostgresRepository(t)
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "items"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureTable(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
