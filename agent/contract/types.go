package contract

import (
	storex "github.com/poyuliu/returns-desk/agent/store"
)

type ActionType string

const (
	ActionInsertReturn   ActionType = "insert_return"
	ActionQueryReturns   ActionType = "query_returns"
	ActionListReturns    ActionType = "list_returns"
	ActionImportCSV      ActionType = "import_csv"
	ActionGenerateReport ActionType = "generate_report"
)

// QueryFilter bounds a returns lookup. Month is 1-12 when set; Raw keeps
// the original prompt text for logging and model context.
type QueryFilter struct {
	Month   int    `json:"month,omitempty"`
	Product string `json:"product,omitempty"`
	Store   string `json:"store,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

func (f QueryFilter) IsZero() bool {
	return f.Month == 0 && f.Product == "" && f.Store == ""
}

// Action is the single routing decision for one prompt. Exactly one of the
// parameter fields is meaningful, depending on Type.
type Action struct {
	Type   ActionType  `json:"type"`
	Item   string      `json:"item,omitempty"`
	Filter QueryFilter `json:"filter"`
	Path   string      `json:"path,omitempty"`
}

// Result is what the coordinator hands back to the caller after the
// dispatched agent has run.
type Result struct {
	Action       ActionType            `json:"action"`
	Message      string                `json:"message,omitempty"`
	Rows         []storex.ReturnRecord `json:"rows,omitempty"`
	Count        int                   `json:"count,omitempty"`
	RowsInserted int                   `json:"rows_inserted,omitempty"`
	ReportPath   string                `json:"report_path,omitempty"`
}
