package report

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	contractx "github.com/poyuliu/returns-desk/agent/contract"
	storex "github.com/poyuliu/returns-desk/agent/store"
)

const (
	sheetRawData   = "Raw Data"
	sheetSummary   = "Summary"
	sheetByStore   = "By Store"
	sheetByProduct = "By Product"
	sheetByDate    = "By Date"
	sheetFindings  = "Findings"

	topN = 5
)

// CountEntry is one row of a frequency table.
type CountEntry struct {
	Key   string
	Count int
}

// Stats is the aggregated view the summary sheets and the findings
// generator are built from.
type Stats struct {
	Total       int
	TopStores   []CountEntry
	TopProducts []CountEntry
	TopDates    []CountEntry
}

// InsightGenerator produces the short textual observations for the
// Findings sheet.
type InsightGenerator interface {
	Insights(ctx context.Context, stats Stats) ([]string, error)
}

// Agent renders return records into a multi-sheet xlsx artifact. Writes
// share one output path, so generation is serialized.
type Agent struct {
	insights   InsightGenerator
	outputPath string

	mu sync.Mutex
}

var _ contractx.Reporter = (*Agent)(nil)

func New(insights InsightGenerator, outputPath string) *Agent {
	if insights == nil {
		insights = Heuristic{}
	}
	if outputPath == "" {
		outputPath = "returns_report.xlsx"
	}
	return &Agent{insights: insights, outputPath: outputPath}
}

// Generate writes the report and returns its path. An empty record set is
// rejected: a report over nothing is a caller mistake, not an empty file.
func (a *Agent) Generate(ctx context.Context, rows []storex.ReturnRecord) (string, error) {
	if len(rows) == 0 {
		return "", contractx.ErrEmptyDataset
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	stats := buildStats(rows)

	findings, err := a.insights.Insights(ctx, stats)
	if err != nil {
		// The report is still worth having without model-written findings.
		log.Warn().Err(err).Msg("insight generation failed, embedding error note")
		findings = []string{fmt.Sprintf("findings unavailable: %v", err)}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeRawData(f, rows); err != nil {
		return "", err
	}
	if err := writeSummary(f, stats); err != nil {
		return "", err
	}
	if err := writeCounts(f, sheetByStore, "Store", stats.TopStores); err != nil {
		return "", err
	}
	if err := writeCounts(f, sheetByProduct, "Product", stats.TopProducts); err != nil {
		return "", err
	}
	if err := writeCounts(f, sheetByDate, "Date", stats.TopDates); err != nil {
		return "", err
	}
	if err := writeFindings(f, findings); err != nil {
		return "", err
	}

	if err := f.SaveAs(a.outputPath); err != nil {
		return "", fmt.Errorf("save report %s: %w", a.outputPath, err)
	}
	return a.outputPath, nil
}

func writeRawData(f *excelize.File, rows []storex.ReturnRecord) error {
	if err := f.SetSheetName("Sheet1", sheetRawData); err != nil {
		return fmt.Errorf("rename raw data sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetRawData, "A1", &[]any{"order_id", "product", "store", "date"}); err != nil {
		return fmt.Errorf("write raw data header: %w", err)
	}
	for i, rec := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("raw data cell for row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheetRawData, cell, &[]any{rec.OrderID, rec.Product, rec.Store, rec.Date}); err != nil {
			return fmt.Errorf("write raw data row %d: %w", i, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, stats Stats) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetSummary, "A1", &[]any{"Total Returns"}); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	if err := f.SetSheetRow(sheetSummary, "A2", &[]any{stats.Total}); err != nil {
		return fmt.Errorf("write summary row: %w", err)
	}
	return nil
}

func writeCounts(f *excelize.File, sheet, label string, entries []CountEntry) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{label, "Count"}); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%s cell for row %d: %w", sheet, i, err)
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{e.Key, e.Count}); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i, err)
		}
	}
	return nil
}

func writeFindings(f *excelize.File, findings []string) error {
	if _, err := f.NewSheet(sheetFindings); err != nil {
		return fmt.Errorf("create findings sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetFindings, "A1", &[]any{"Findings"}); err != nil {
		return fmt.Errorf("write findings header: %w", err)
	}
	for i, line := range findings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("findings cell for row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheetFindings, cell, &[]any{line}); err != nil {
			return fmt.Errorf("write findings row %d: %w", i, err)
		}
	}
	return nil
}

func buildStats(rows []storex.ReturnRecord) Stats {
	stores := make(map[string]int)
	products := make(map[string]int)
	dates := make(map[string]int)
	for _, rec := range rows {
		stores[rec.Store]++
		products[rec.Product]++
		dates[rec.Date]++
	}
	return Stats{
		Total:       len(rows),
		TopStores:   topEntries(stores, topN),
		TopProducts: topEntries(products, topN),
		TopDates:    topEntries(dates, topN),
	}
}

// topEntries returns the n most frequent keys, count descending with key
// as a stable tie-break.
func topEntries(counts map[string]int, n int) []CountEntry {
	entries := make([]CountEntry, 0, len(counts))
	for k, c := range counts {
		entries = append(entries, CountEntry{Key: k, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
