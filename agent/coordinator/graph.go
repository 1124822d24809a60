package coordinator

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/poyuliu/returns-desk/agent/contract"
	storex "github.com/poyuliu/returns-desk/agent/store"
)

type graphState struct {
	Prompt string
	Action contractx.Action
}

func (c *Coordinator) compileProcessGraph(
	ctx context.Context,
) (compose.Runnable[GraphInput, contractx.Result], error) {
	graph := compose.NewGraph[GraphInput, contractx.Result]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*graphState, error) {
			prompt := strings.TrimSpace(in.Prompt)
			if prompt == "" {
				return nil, ErrInvalidPrompt
			}
			return &graphState{Prompt: prompt}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("classify_intent",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			action, err := c.classifier.Classify(ctx, in.Prompt)
			if err != nil {
				return nil, err
			}
			in.Action = action
			return in, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node classify_intent: %w", err)
	}

	dispatchNodes := map[string]func(context.Context, *graphState) (contractx.Result, error){
		string(contractx.ActionInsertReturn):   c.dispatchInsert,
		string(contractx.ActionQueryReturns):   c.dispatchQuery,
		string(contractx.ActionListReturns):    c.dispatchList,
		string(contractx.ActionImportCSV):      c.dispatchImport,
		string(contractx.ActionGenerateReport): c.dispatchReport,
	}

	branchTargets := make(map[string]bool, len(dispatchNodes))
	for name, fn := range dispatchNodes {
		if err := graph.AddLambdaNode(name, compose.InvokableLambda(fn)); err != nil {
			return nil, fmt.Errorf("add node %s: %w", name, err)
		}
		branchTargets[name] = true
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *graphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
			}
			name := string(in.Action.Type)
			if !branchTargets[name] {
				return "", fmt.Errorf("%w: unroutable action=%q", contractx.ErrValidation, in.Action.Type)
			}
			return name, nil
		},
		branchTargets,
	)

	if err := graph.AddEdge(compose.START, "validate_request"); err != nil {
		return nil, fmt.Errorf("add edge start->validate: %w", err)
	}
	if err := graph.AddEdge("validate_request", "classify_intent"); err != nil {
		return nil, fmt.Errorf("add edge validate->classify: %w", err)
	}
	if err := graph.AddBranch("classify_intent", branch); err != nil {
		return nil, fmt.Errorf("add dispatch branch: %w", err)
	}
	for name := range dispatchNodes {
		if err := graph.AddEdge(name, compose.END); err != nil {
			return nil, fmt.Errorf("add edge %s->end: %w", name, err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("coordinator.process"))
	if err != nil {
		return nil, fmt.Errorf("compile coordinator graph: %w", err)
	}
	return runner, nil
}

func (c *Coordinator) dispatchInsert(ctx context.Context, in *graphState) (contractx.Result, error) {
	rec := &storex.ReturnRecord{Product: in.Action.Item}
	if err := c.retriever.Insert(ctx, rec); err != nil {
		return contractx.Result{}, err
	}
	return contractx.Result{
		Action:  contractx.ActionInsertReturn,
		Message: fmt.Sprintf("recorded return for %s (order %s)", rec.Product, rec.OrderID),
		Rows:    []storex.ReturnRecord{*rec},
		Count:   1,
	}, nil
}

func (c *Coordinator) dispatchQuery(ctx context.Context, in *graphState) (contractx.Result, error) {
	rows, err := c.retriever.Query(ctx, in.Action.Filter)
	if err != nil {
		return contractx.Result{}, err
	}
	return contractx.Result{
		Action:  contractx.ActionQueryReturns,
		Message: fmt.Sprintf("%d matching return records", len(rows)),
		Rows:    rows,
		Count:   len(rows),
	}, nil
}

func (c *Coordinator) dispatchList(ctx context.Context, in *graphState) (contractx.Result, error) {
	rows, err := c.retriever.List(ctx, 0)
	if err != nil {
		return contractx.Result{}, err
	}
	return contractx.Result{
		Action: contractx.ActionListReturns,
		Rows:   rows,
		Count:  len(rows),
	}, nil
}

func (c *Coordinator) dispatchImport(ctx context.Context, in *graphState) (contractx.Result, error) {
	n, err := c.retriever.ImportCSV(ctx, in.Action.Path)
	if err != nil {
		return contractx.Result{}, err
	}
	return contractx.Result{
		Action:       contractx.ActionImportCSV,
		Message:      fmt.Sprintf("imported %d records from %s", n, in.Action.Path),
		RowsInserted: n,
	}, nil
}

func (c *Coordinator) dispatchReport(ctx context.Context, in *graphState) (contractx.Result, error) {
	rows, err := c.retriever.List(ctx, reportRowLimit)
	if err != nil {
		return contractx.Result{}, err
	}
	if len(rows) == 0 {
		return contractx.Result{}, contractx.ErrEmptyDataset
	}

	path, err := c.reporter.Generate(ctx, rows)
	if err != nil {
		return contractx.Result{}, err
	}
	return contractx.Result{
		Action:     contractx.ActionGenerateReport,
		Message:    fmt.Sprintf("report written over %d records", len(rows)),
		Count:      len(rows),
		ReportPath: path,
	}, nil
}
