package coordinator

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/poyuliu/returns-desk/agent/contract"
)

var ErrInvalidPrompt = errors.New("prompt is empty")

// reportRowLimit caps how many records feed a report, mirroring the
// retrieval list default.
const reportRowLimit = 500

// Coordinator routes one free-text prompt to exactly one agent action.
// The routing pipeline is compiled once as an eino graph; Process is the
// only entry point.
type Coordinator struct {
	classifier contractx.Classifier
	retriever  contractx.Retriever
	reporter   contractx.Reporter

	graphRunner compose.Runnable[GraphInput, contractx.Result]
}

type GraphInput struct {
	Prompt string
}

func New(
	classifier contractx.Classifier,
	retriever contractx.Retriever,
	reporter contractx.Reporter,
) (*Coordinator, error) {
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if reporter == nil {
		return nil, errors.New("reporter is required")
	}

	c := &Coordinator{
		classifier: classifier,
		retriever:  retriever,
		reporter:   reporter,
	}

	graphRunner, err := c.compileProcessGraph(context.Background())
	if err != nil {
		return nil, err
	}
	c.graphRunner = graphRunner

	return c, nil
}

// Process classifies the prompt, dispatches the matching agent, and
// returns its result. Unrecognized prompts surface contract.ErrNoMatch.
func (c *Coordinator) Process(ctx context.Context, prompt string) (contractx.Result, error) {
	log.Info().Str("prompt", strings.TrimSpace(prompt)).Msg("coordinator received prompt")

	out, err := c.graphRunner.Invoke(ctx, GraphInput{Prompt: prompt})
	if err != nil {
		return contractx.Result{}, err
	}

	log.Info().Str("action", string(out.Action)).Msg("coordinator dispatched action")
	return out, nil
}
