package classifier

import (
	"errors"
	"testing"

	contractx "github.com/poyuliu/returns-desk/agent/contract"
)

func TestActionFromOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		out  llmOutput
		want contractx.Action
	}{
		{
			name: "insert with item",
			out:  llmOutput{Tool: "insert_return", Args: map[string]any{"item": "laptop"}},
			want: contractx.Action{Type: contractx.ActionInsertReturn, Item: "laptop"},
		},
		{
			name: "query month as json number",
			out:  llmOutput{Tool: "query_returns", Args: map[string]any{"month": float64(9)}},
			want: contractx.Action{
				Type:   contractx.ActionQueryReturns,
				Filter: contractx.QueryFilter{Month: 9, Raw: "查詢 9 月的退貨紀錄"},
			},
		},
		{
			name: "import defaults path",
			out:  llmOutput{Tool: "import_csv"},
			want: contractx.Action{Type: contractx.ActionImportCSV, Path: DefaultCSVPath},
		},
		{
			name: "report ignores args",
			out:  llmOutput{Tool: "generate_report", Args: map[string]any{"stray": true}},
			want: contractx.Action{Type: contractx.ActionGenerateReport},
		},
		{
			name: "tool name case is normalized",
			out:  llmOutput{Tool: "List_Returns"},
			want: contractx.Action{Type: contractx.ActionListReturns},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := actionFromOutput(tt.out, "查詢 9 月的退貨紀錄")
			if err != nil {
				t.Fatalf("actionFromOutput returned error: %v", err)
			}
			if tt.want.Filter.Raw == "" {
				got.Filter.Raw = ""
			}
			if got != tt.want {
				t.Fatalf("actionFromOutput = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestActionFromOutputNone(t *testing.T) {
	t.Parallel()

	for _, tool := range []string{"none", ""} {
		if _, err := actionFromOutput(llmOutput{Tool: tool}, "hello"); !errors.Is(err, contractx.ErrNoMatch) {
			t.Fatalf("tool=%q: expected ErrNoMatch, got %v", tool, err)
		}
	}
}

func TestActionFromOutputSchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		out  llmOutput
	}{
		{name: "unknown tool", out: llmOutput{Tool: "drop_table"}},
		{name: "insert without item", out: llmOutput{Tool: "insert_return"}},
		{name: "month out of range", out: llmOutput{Tool: "query_returns", Args: map[string]any{"month": float64(13)}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := actionFromOutput(tt.out, "prompt"); !errors.Is(err, contractx.ErrSchemaViolation) {
				t.Fatalf("expected ErrSchemaViolation, got %v", err)
			}
		})
	}
}
