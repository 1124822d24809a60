package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/poyuliu/returns-desk/agent/contract"
)

// llmOutput is the JSON envelope the model is instructed to emit:
// {"tool": "<action>", "args": {...}}.
type llmOutput struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// LLM classifies prompts with a structured-output chat model. The tool set
// is closed; anything outside it is a schema violation, and an explicit
// "none" surfaces as ErrNoMatch.
type LLM struct {
	runner compose.Runnable[map[string]any, llmOutput]
}

var _ contractx.Classifier = (*LLM)(nil)

func NewLLM(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*LLM, error) {
	runner, err := compileClassifierGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile classifier graph: %v", contractx.ErrModelInvoke, err)
	}
	return &LLM{runner: runner}, nil
}

func (c *LLM) Classify(ctx context.Context, prompt string) (contractx.Action, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return contractx.Action{}, fmt.Errorf("%w: prompt is empty", contractx.ErrValidation)
	}

	payload, err := json.Marshal(map[string]any{"prompt": prompt})
	if err != nil {
		return contractx.Action{}, fmt.Errorf("%w: marshal classifier payload: %v", contractx.ErrValidation, err)
	}

	out, err := c.runner.Invoke(ctx, map[string]any{
		"input": string(payload),
	})
	if err != nil {
		return contractx.Action{}, fmt.Errorf("%w: classifier invoke: %v", contractx.ErrModelInvoke, err)
	}

	return actionFromOutput(out, prompt)
}

func actionFromOutput(out llmOutput, prompt string) (contractx.Action, error) {
	tool := strings.ToLower(strings.TrimSpace(out.Tool))

	switch contractx.ActionType(tool) {
	case contractx.ActionInsertReturn:
		item := argString(out.Args, "item")
		if item == "" {
			return contractx.Action{}, fmt.Errorf("%w: insert_return without item", contractx.ErrSchemaViolation)
		}
		return contractx.Action{Type: contractx.ActionInsertReturn, Item: item}, nil

	case contractx.ActionQueryReturns:
		filter := contractx.QueryFilter{
			Month:   argInt(out.Args, "month"),
			Product: argString(out.Args, "product"),
			Store:   argString(out.Args, "store"),
			Raw:     prompt,
		}
		if filter.Month < 0 || filter.Month > 12 {
			return contractx.Action{}, fmt.Errorf("%w: month=%d out of range", contractx.ErrSchemaViolation, filter.Month)
		}
		return contractx.Action{Type: contractx.ActionQueryReturns, Filter: filter}, nil

	case contractx.ActionListReturns:
		return contractx.Action{Type: contractx.ActionListReturns}, nil

	case contractx.ActionImportCSV:
		path := argString(out.Args, "path")
		if path == "" {
			path = DefaultCSVPath
		}
		return contractx.Action{Type: contractx.ActionImportCSV, Path: path}, nil

	case contractx.ActionGenerateReport:
		return contractx.Action{Type: contractx.ActionGenerateReport}, nil
	}

	if tool == "" || tool == "none" {
		return contractx.Action{}, contractx.ErrNoMatch
	}
	return contractx.Action{}, fmt.Errorf("%w: unknown tool=%q", contractx.ErrSchemaViolation, out.Tool)
}

func argString(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func argInt(args map[string]any, key string) int {
	if args == nil {
		return 0
	}
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &n); err == nil {
			return n
		}
	}
	return 0
}
