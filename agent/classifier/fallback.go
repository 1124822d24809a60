package classifier

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	contractx "github.com/poyuliu/returns-desk/agent/contract"
)

// Fallback tries the primary classifier and, when the model fails or emits
// something outside the schema, routes the same prompt through the
// secondary. A deliberate no-match or invalid prompt is final: the model
// answering "none" is an answer, not a failure.
type Fallback struct {
	primary   contractx.Classifier
	secondary contractx.Classifier
}

var _ contractx.Classifier = (*Fallback)(nil)

func WithFallback(primary, secondary contractx.Classifier) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) Classify(ctx context.Context, prompt string) (contractx.Action, error) {
	act, err := f.primary.Classify(ctx, prompt)
	if err == nil {
		return act, nil
	}
	if errors.Is(err, contractx.ErrNoMatch) || errors.Is(err, contractx.ErrValidation) {
		return contractx.Action{}, err
	}

	log.Warn().Err(err).Msg("primary classifier failed, falling back to rules")
	return f.secondary.Classify(ctx, prompt)
}
