package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/nkapoor/taskflow/internal/knowledge"
	"github.com/tmc/langchaingo/llms"
)

// KnowledgeCapability serves two instruction shapes: explicit writes
// ("Add knowledge: 'content' in filename") and free-form queries answered by
// the model over the whole stored corpus. Retrieval is deliberately naive,
// the entire store is handed to the model as context.
type KnowledgeCapability struct {
	store *knowledge.Store
	model llms.Model
}

func NewKnowledgeCapability(store *knowledge.Store, model llms.Model) *KnowledgeCapability {
	return &KnowledgeCapability{store: store, model: model}
}

func (c *KnowledgeCapability) Name() Name { return Knowledge }

func (c *KnowledgeCapability) Invoke(ctx context.Context, instruction string) (string, error) {
	if IsAddDirective(instruction) {
		d, ok := ParseAddDirective(instruction)
		if !ok {
			return "", &ParseError{Capability: Knowledge, Reason: `expected format "Add knowledge: 'content' in filename"`}
		}
		name, err := c.store.Put(d.Filename, d.Content)
		if err != nil {
			return "", fmt.Errorf("store knowledge: %w", err)
		}
		return fmt.Sprintf("Knowledge successfully stored in %s.txt", name), nil
	}

	corpus, err := c.store.Corpus()
	if err != nil {
		return "", fmt.Errorf("load knowledge: %w", err)
	}
	if strings.TrimSpace(corpus) == "" {
		return "Knowledge base is empty. I don't have internal info on this.", nil
	}

	prompt := fmt.Sprintf("Context: %s\n\nQuestion: %s\n\nAnswer only based on context:",
		corpus, StripQueryPrefix(instruction))
	answer, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		return "", fmt.Errorf("knowledge retrieval: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
