package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra"
)

type ItemRepositoryPostgres struct {
	db    *sql.DB
	table string
}

// OpenItemRepositoryPostgres connects with the lib/pq driver.
func OpenItemRepositoryPostgres(dsn, table string) (*ItemRepositoryPostgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, infra.NewStoreError("postgres open", err)
	}
	return NewItemRepositoryPostgres(db, table), nil
}

func NewItemRepositoryPostgres(db *sql.DB, table string) *ItemRepositoryPostgres {
	return &ItemRepositoryPostgres{db: db, table: pq.QuoteIdentifier(table)}
}

func (r *ItemRepositoryPostgres) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (item_id TEXT PRIMARY KEY, payload JSONB NOT NULL)`, r.table)
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return infra.NewStoreError("postgres create table", err)
	}
	return nil
}

func (r *ItemRepositoryPostgres) GetItem(ctx context.Context, itemId string) (*item.Item, error) {
	var payload []byte
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE item_id = $1`, r.table)
	err := r.db.QueryRowContext(ctx, query, itemId).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, item.ErrNotFound
	}
	if err != nil {
		return nil, infra.NewStoreError("postgres select", err)
	}
	return decodeItem(itemId, payload)
}

func (r *ItemRepositoryPostgres) SaveItem(ctx context.Context, it *item.Item) error {
	raw, err := it.Serialize()
	if err != nil {
		return infra.NewStoreError("postgres encode", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (item_id, payload) VALUES ($1, $2)
		ON CONFLICT (item_id) DO UPDATE SET payload = EXCLUDED.payload`, r.table)
	if _, err := r.db.ExecContext(ctx, query, it.Id, string(raw)); err != nil {
		return infra.NewStoreError("postgres upsert", err)
	}
	return nil
}

func (r *ItemRepositoryPostgres) DeleteItem(ctx context.Context, itemId string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE item_id = $1`, r.table)
	if _, err := r.db.ExecContext(ctx, query, itemId); err != nil {
		return infra.NewStoreError("postgres delete", err)
	}
	return nil
}

func (r *ItemRepositoryPostgres) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return infra.NewStoreError("postgres ping", err)
	}
	return nil
}

func (r *ItemRepositoryPostgres) Close() error {
	return r.db.Close()
}
