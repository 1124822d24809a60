package report

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/poyuliu/returns-desk/agent/contract"
)

// Heuristic writes findings without a model: one observation per
// aggregate, derived directly from the stats.
type Heuristic struct{}

var _ InsightGenerator = Heuristic{}

func (Heuristic) Insights(_ context.Context, stats Stats) ([]string, error) {
	findings := []string{
		fmt.Sprintf("A total of %d return records were analyzed.", stats.Total),
	}
	if len(stats.TopStores) > 0 {
		top := stats.TopStores[0]
		findings = append(findings, fmt.Sprintf("Store %q accounts for the most returns (%d).", top.Key, top.Count))
	}
	if len(stats.TopProducts) > 0 {
		top := stats.TopProducts[0]
		findings = append(findings, fmt.Sprintf("Product %q is returned most often (%d).", top.Key, top.Count))
	}
	return findings, nil
}

// LLMInsights asks a chat model for the observations, feeding it the same
// aggregates that end up on the summary sheets.
type LLMInsights struct {
	client       *openaisdk.Client
	model        string
	systemPrompt string
}

var _ InsightGenerator = (*LLMInsights)(nil)

func NewLLMInsights(client *openaisdk.Client, model, systemPrompt string) *LLMInsights {
	return &LLMInsights{
		client:       client,
		model:        strings.TrimSpace(model),
		systemPrompt: strings.TrimSpace(systemPrompt),
	}
}

func (g *LLMInsights) Insights(ctx context.Context, stats Stats) ([]string, error) {
	if g.client == nil {
		return nil, fmt.Errorf("%w: insights client is not configured", contractx.ErrModelInvoke)
	}

	resp, err := g.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(g.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(g.systemPrompt),
			openaisdk.UserMessage(statsPayload(stats)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: findings completion: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: findings completion returned no choices", contractx.ErrSchemaViolation)
	}

	findings := splitFindings(resp.Choices[0].Message.Content)
	if len(findings) == 0 {
		return nil, fmt.Errorf("%w: findings completion was empty", contractx.ErrSchemaViolation)
	}
	return findings, nil
}

func statsPayload(stats Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "總退貨數: %d\n", stats.Total)
	writeCountLine(&b, "Top Stores", stats.TopStores)
	writeCountLine(&b, "Top Products", stats.TopProducts)
	writeCountLine(&b, "Top Dates", stats.TopDates)
	return b.String()
}

func writeCountLine(b *strings.Builder, label string, entries []CountEntry) {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s=%d", e.Key, e.Count))
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(parts, ", "))
}

func splitFindings(content string) []string {
	var findings []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		if line != "" {
			findings = append(findings, line)
		}
	}
	return findings
}
