package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// ReturnRecord is one product-return event. The table is the single source
// of truth: agents hold no copies beyond transient query results.
type ReturnRecord struct {
	bun.BaseModel `bun:"table:returns"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	OrderID string `bun:"order_id" json:"order_id"`
	Product string `bun:"product" json:"product"`
	Store   string `bun:"store" json:"store"`
	Date    string `bun:"date" json:"date"` // YYYY-MM-DD
}

type Config struct {
	Path string `split_words:"true" default:"returns.db"`
}

// Open opens the file-backed SQLite database behind a bun handle.
// The connection pool is pinned to one connection: SQLite is a
// single-writer store and the app processes one prompt at a time.
func Open(cfg Config) (*bun.DB, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?cache=shared", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqldb.SetMaxOpenConns(1)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// EnsureSchema creates the returns table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*ReturnRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create returns table: %w", err)
	}
	return nil
}
