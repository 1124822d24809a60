package contract

import (
	"context"

	storex "github.com/poyuliu/returns-desk/agent/store"
)

// Classifier maps one free-text prompt to exactly one Action, or ErrNoMatch.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (Action, error)
}

// Retriever is the retrieval agent boundary: all reads and writes against
// the persistent returns store go through it.
type Retriever interface {
	Insert(ctx context.Context, rec *storex.ReturnRecord) error
	Query(ctx context.Context, filter QueryFilter) ([]storex.ReturnRecord, error)
	List(ctx context.Context, limit int) ([]storex.ReturnRecord, error)
	ImportCSV(ctx context.Context, path string) (int, error)
	Count(ctx context.Context) (int, error)
}

// Reporter renders the given records into a spreadsheet artifact and
// returns the path it was written to.
type Reporter interface {
	Generate(ctx context.Context, rows []storex.ReturnRecord) (string, error)
}
