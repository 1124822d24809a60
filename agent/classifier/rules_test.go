package classifier

import (
	"errors"
	"testing"

	contractx "github.com/poyuliu/returns-desk/agent/contract"
)

func TestRouteLiteralPrompts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prompt string
		want   contractx.Action
	}{
		{
			name:   "insert with item",
			prompt: "新增退貨 laptop",
			want:   contractx.Action{Type: contractx.ActionInsertReturn, Item: "laptop"},
		},
		{
			name:   "query by month",
			prompt: "查詢 9 月的退貨紀錄",
			want: contractx.Action{
				Type:   contractx.ActionQueryReturns,
				Filter: contractx.QueryFilter{Month: 9, Raw: "查詢 9 月的退貨紀錄"},
			},
		},
		{
			name:   "list all",
			prompt: "列出所有退貨",
			want:   contractx.Action{Type: contractx.ActionListReturns},
		},
		{
			name:   "import named csv",
			prompt: "匯入 sample.csv",
			want:   contractx.Action{Type: contractx.ActionImportCSV, Path: "sample.csv"},
		},
		{
			name:   "generate excel report",
			prompt: "生成 Excel 報表",
			want:   contractx.Action{Type: contractx.ActionGenerateReport},
		},
		{
			name:   "import without a file name uses the sample",
			prompt: "匯入 CSV",
			want:   contractx.Action{Type: contractx.ActionImportCSV, Path: DefaultCSVPath},
		},
		{
			name:   "english list",
			prompt: "list all returns",
			want:   contractx.Action{Type: contractx.ActionListReturns},
		},
		{
			name:   "english insert",
			prompt: "insert a return for keyboard",
			want:   contractx.Action{Type: contractx.ActionInsertReturn, Item: "keyboard"},
		},
		{
			name:   "show all records",
			prompt: "顯示所有退貨紀錄",
			want:   contractx.Action{Type: contractx.ActionListReturns},
		},
		{
			name:   "query without month keeps raw filter",
			prompt: "查詢 7-11 門市的退貨",
			want: contractx.Action{
				Type:   contractx.ActionQueryReturns,
				Filter: contractx.QueryFilter{Raw: "查詢 7-11 門市的退貨"},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Route(tt.prompt)
			if err != nil {
				t.Fatalf("Route(%q) returned error: %v", tt.prompt, err)
			}
			if got != tt.want {
				t.Fatalf("Route(%q) = %+v, want %+v", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestRouteNoMatch(t *testing.T) {
	t.Parallel()

	_, err := Route("今天天氣如何")
	if !errors.Is(err, contractx.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestRouteEmptyPrompt(t *testing.T) {
	t.Parallel()

	_, err := Route("   ")
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRouteInsertWithoutItem(t *testing.T) {
	t.Parallel()

	_, err := Route("新增退貨")
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRouteReportKeywordWinsOverQuery(t *testing.T) {
	t.Parallel()

	got, err := Route("查詢後產生 Excel 報表")
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if got.Type != contractx.ActionGenerateReport {
		t.Fatalf("expected generate_report, got %s", got.Type)
	}
}
