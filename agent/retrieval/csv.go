package retrieval

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/uptrace/bun"

	storex "github.com/poyuliu/returns-desk/agent/store"
)

// ImportCSV loads the file at path into the returns table. The existing
// contents are replaced in the same transaction, so a failed import leaves
// the previous records untouched. Columns are matched by header name;
// unknown columns are ignored and a missing order_id is generated per row.
func (a *Agent) ImportCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	recs, err := readRecords(f)
	if err != nil {
		return 0, fmt.Errorf("read csv %s: %w", path, err)
	}

	err = a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*storex.ReturnRecord)(nil)).
			Where("1 = 1").
			Exec(ctx); err != nil {
			return fmt.Errorf("clear returns table: %w", err)
		}
		if len(recs) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&recs).Exec(ctx); err != nil {
			return fmt.Errorf("bulk insert returns: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

func readRecords(r io.Reader) ([]storex.ReturnRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var recs []storex.ReturnRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := storex.ReturnRecord{
			OrderID: field(row, cols, "order_id"),
			Product: field(row, cols, "product"),
			Store:   field(row, cols, "store"),
			Date:    field(row, cols, "date"),
		}
		if rec.OrderID == "" {
			rec.OrderID = newOrderID()
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func field(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
