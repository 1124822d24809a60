package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	contractx "github.com/poyuliu/returns-desk/agent/contract"
	storex "github.com/poyuliu/returns-desk/agent/store"
)

type fixedInsights struct {
	findings []string
	err      error
}

func (f fixedInsights) Insights(ctx context.Context, stats Stats) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.findings, nil
}

func sampleRows() []storex.ReturnRecord {
	return []storex.ReturnRecord{
		{OrderID: "ord-1", Product: "laptop", Store: "Taipei", Date: "2025-09-03"},
		{OrderID: "ord-2", Product: "laptop", Store: "Taipei", Date: "2025-09-12"},
		{OrderID: "ord-3", Product: "mouse", Store: "Tainan", Date: "2025-08-20"},
	}
}

func TestGenerateWritesAllSheets(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "report.xlsx")
	agent := New(fixedInsights{findings: []string{"finding one", "finding two"}}, out)

	path, err := agent.Generate(context.Background(), sampleRows())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if path != out {
		t.Fatalf("expected path %q, got %q", out, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open generated report: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range []string{sheetRawData, sheetSummary, sheetByStore, sheetByProduct, sheetByDate, sheetFindings} {
		found := false
		for _, s := range sheets {
			if s == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("sheet %q missing, have %v", want, sheets)
		}
	}
}

func TestGenerateRawDataRoundTrip(t *testing.T) {
	t.Parallel()

	rows := sampleRows()
	out := filepath.Join(t.TempDir(), "report.xlsx")
	agent := New(fixedInsights{findings: []string{"f"}}, out)

	path, err := agent.Generate(context.Background(), rows)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open generated report: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(sheetRawData)
	if err != nil {
		t.Fatalf("read raw data sheet: %v", err)
	}
	if len(got) != len(rows)+1 {
		t.Fatalf("expected %d raw data rows incl header, got %d", len(rows)+1, len(got))
	}
	for i, rec := range rows {
		want := []string{rec.OrderID, rec.Product, rec.Store, rec.Date}
		for j, cell := range want {
			if got[i+1][j] != cell {
				t.Fatalf("raw data row %d col %d = %q, want %q", i, j, got[i+1][j], cell)
			}
		}
	}
}

func TestGenerateSummaryAndTopCounts(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "report.xlsx")
	agent := New(fixedInsights{findings: []string{"f"}}, out)

	path, err := agent.Generate(context.Background(), sampleRows())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open generated report: %v", err)
	}
	defer f.Close()

	total, err := f.GetCellValue(sheetSummary, "A2")
	if err != nil {
		t.Fatalf("read summary total: %v", err)
	}
	if total != "3" {
		t.Fatalf("expected total 3, got %q", total)
	}

	topStore, err := f.GetCellValue(sheetByStore, "A2")
	if err != nil {
		t.Fatalf("read top store: %v", err)
	}
	if topStore != "Taipei" {
		t.Fatalf("expected Taipei as top store, got %q", topStore)
	}
}

func TestGenerateEmptyRows(t *testing.T) {
	t.Parallel()

	agent := New(fixedInsights{}, filepath.Join(t.TempDir(), "report.xlsx"))

	_, err := agent.Generate(context.Background(), nil)
	if !errors.Is(err, contractx.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestGenerateEmbedsInsightFailure(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "report.xlsx")
	agent := New(fixedInsights{err: fmt.Errorf("model down")}, out)

	path, err := agent.Generate(context.Background(), sampleRows())
	if err != nil {
		t.Fatalf("Generate should survive insight failure, got: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open generated report: %v", err)
	}
	defer f.Close()

	note, err := f.GetCellValue(sheetFindings, "A2")
	if err != nil {
		t.Fatalf("read findings note: %v", err)
	}
	if note == "" {
		t.Fatal("expected an error note on the findings sheet")
	}
}

func TestTopEntriesOrderingAndCap(t *testing.T) {
	t.Parallel()

	counts := map[string]int{"a": 1, "b": 3, "c": 3, "d": 2, "e": 1, "f": 5, "g": 1}
	got := topEntries(counts, 5)

	if len(got) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(got))
	}
	want := []CountEntry{{"f", 5}, {"b", 3}, {"c", 3}, {"d", 2}, {"a", 1}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestHeuristicInsights(t *testing.T) {
	t.Parallel()

	stats := buildStats(sampleRows())
	findings, err := Heuristic{}.Insights(context.Background(), stats)
	if err != nil {
		t.Fatalf("Insights returned error: %v", err)
	}
	if len(findings) < 2 || len(findings) > 3 {
		t.Fatalf("expected 2-3 findings, got %d", len(findings))
	}
}
