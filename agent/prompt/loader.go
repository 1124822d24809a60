package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/classifier.txt
	classifierRaw string

	//go:embed template/findings.txt
	findingsRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Classifier string
	Findings   string
}

// LoadPromptSet returns trimmed prompt strings. The embed is compile-time,
// so this is safe to call anywhere.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Classifier: strings.TrimSpace(classifierRaw),
		Findings:   strings.TrimSpace(findingsRaw),
	}
}
