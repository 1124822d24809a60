package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	contractx "github.com/poyuliu/returns-desk/agent/contract"
	storex "github.com/poyuliu/returns-desk/agent/store"
)

const defaultListLimit = 500

// Agent executes database reads and writes against the returns store.
type Agent struct {
	db *bun.DB
}

var _ contractx.Retriever = (*Agent)(nil)

func New(db *bun.DB) *Agent {
	return &Agent{db: db}
}

// Insert stores a single return record. A missing order id is generated
// and a missing date defaults to today (UTC).
func (a *Agent) Insert(ctx context.Context, rec *storex.ReturnRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record is nil", contractx.ErrValidation)
	}
	rec.Product = strings.TrimSpace(rec.Product)
	if rec.Product == "" {
		return fmt.Errorf("%w: product is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(rec.OrderID) == "" {
		rec.OrderID = newOrderID()
	}
	if strings.TrimSpace(rec.Date) == "" {
		rec.Date = time.Now().UTC().Format("2006-01-02")
	}

	if _, err := a.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return fmt.Errorf("insert return: %w", err)
	}
	return nil
}

// Query returns records matching the filter. Month matches the month part
// of the stored date; product and store match exactly.
func (a *Agent) Query(ctx context.Context, filter contractx.QueryFilter) ([]storex.ReturnRecord, error) {
	if filter.Month < 0 || filter.Month > 12 {
		return nil, fmt.Errorf("%w: month=%d out of range", contractx.ErrValidation, filter.Month)
	}

	rows := make([]storex.ReturnRecord, 0)
	q := a.db.NewSelect().Model(&rows)
	if filter.Month > 0 {
		q = q.Where("CAST(strftime('%m', date) AS INTEGER) = ?", filter.Month)
	}
	if p := strings.TrimSpace(filter.Product); p != "" {
		q = q.Where("product = ?", p)
	}
	if s := strings.TrimSpace(filter.Store); s != "" {
		q = q.Where("store = ?", s)
	}

	if err := q.Order("id ASC").Limit(defaultListLimit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("query returns: %w", err)
	}
	return rows, nil
}

// List returns up to limit records in insertion order. A non-positive
// limit uses the default of 500.
func (a *Agent) List(ctx context.Context, limit int) ([]storex.ReturnRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows := make([]storex.ReturnRecord, 0)
	if err := a.db.NewSelect().
		Model(&rows).
		Order("id ASC").
		Limit(limit).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	return rows, nil
}

// Count reports how many records the store currently holds.
func (a *Agent) Count(ctx context.Context) (int, error) {
	n, err := a.db.NewSelect().Model((*storex.ReturnRecord)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count returns: %w", err)
	}
	return n, nil
}

func newOrderID() string {
	return uuid.NewString()[:8]
}
