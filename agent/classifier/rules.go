package classifier

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/poyuliu/returns-desk/agent/contract"
)

// DefaultCSVPath is assumed when an import prompt names no file, matching
// the bundled sample dataset.
const DefaultCSVPath = "sample.csv"

var (
	csvPathRe = regexp.MustCompile(`[^\s"']+\.csv`)
	monthRe   = regexp.MustCompile(`(\d{1,2})\s*月`)
)

// Rules is a deterministic keyword classifier over the closed action set.
// Prompts mix Traditional Chinese and English, so both keyword families
// are matched.
type Rules struct{}

var _ contractx.Classifier = (*Rules)(nil)

func NewRules() *Rules {
	return &Rules{}
}

func (r *Rules) Classify(_ context.Context, prompt string) (contractx.Action, error) {
	return Route(prompt)
}

// Route maps one prompt to one action. Evaluation order matters: import
// and report keywords are checked before insert/query/list so that
// "生成 Excel 報表" never routes as a query for "報表".
func Route(prompt string) (contractx.Action, error) {
	text := strings.TrimSpace(prompt)
	if text == "" {
		return contractx.Action{}, fmt.Errorf("%w: prompt is empty", contractx.ErrValidation)
	}
	lower := strings.ToLower(text)

	switch {
	case containsAny(text, "匯入", "載入") || strings.Contains(lower, "import"):
		path := DefaultCSVPath
		if m := csvPathRe.FindString(text); m != "" {
			path = m
		}
		return contractx.Action{Type: contractx.ActionImportCSV, Path: path}, nil

	case containsAny(text, "報表", "報告") || strings.Contains(lower, "report") ||
		(strings.Contains(lower, "excel") && containsAny(text, "產生", "生成", "請出")):
		return contractx.Action{Type: contractx.ActionGenerateReport}, nil

	case containsAny(text, "新增", "插入") || strings.Contains(lower, "insert") || strings.Contains(lower, "add "):
		item := extractItem(text)
		if item == "" {
			return contractx.Action{}, fmt.Errorf("%w: insert prompt names no item", contractx.ErrValidation)
		}
		return contractx.Action{Type: contractx.ActionInsertReturn, Item: item}, nil

	case containsAny(text, "查詢") || strings.Contains(lower, "query") || strings.Contains(lower, "search"):
		filter := contractx.QueryFilter{Raw: text}
		if m := monthRe.FindStringSubmatch(text); m != nil {
			if month, err := strconv.Atoi(m[1]); err == nil && month >= 1 && month <= 12 {
				filter.Month = month
			}
		}
		return contractx.Action{Type: contractx.ActionQueryReturns, Filter: filter}, nil

	case containsAny(text, "列出", "顯示", "全部") || strings.Contains(lower, "list") || strings.Contains(lower, "show"):
		return contractx.Action{Type: contractx.ActionListReturns}, nil
	}

	return contractx.Action{}, contractx.ErrNoMatch
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// extractItem strips the routing keywords and returns what is left, so
// "新增退貨 laptop" yields "laptop".
func extractItem(text string) string {
	stripped := text
	for _, kw := range []string{"新增", "插入", "退貨", "一筆"} {
		stripped = strings.ReplaceAll(stripped, kw, " ")
	}
	fields := strings.Fields(stripped)
	kept := fields[:0]
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "insert", "add", "return", "a", "an", "new", "for":
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
