// Package refiner polishes free-text review bodies with an LLM. It is a
// best-effort enrichment: with no API key configured, or on any transport or
// content failure, Refine hands back the original text and only logs a
// warning. Submission never depends on it.
package refiner

import (
	"context"
	"log"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when REVIEW_LLM_MODEL is not set.
const DefaultModel = "claude-sonnet-4-5"

const systemPrompt = "You are a helpful copy editor for a solar installation review site. " +
	"Refine the reviewer's text to be more professional, clear, and concise while retaining " +
	"the original sentiment and key details. Do not make it sound fake or overly enthusiastic " +
	"if the original wasn't. Just polish the grammar and flow. Return only the refined text."

// AnthropicMessager is the slice of the Anthropic client the refiner needs.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Refiner implements review.Refiner over the Anthropic messages API. The zero
// value is a disabled refiner that always returns its input.
type Refiner struct {
	messages AnthropicMessager
	model    string
}

// New builds a refiner over an injected messager, used by tests and custom
// wiring.
func New(messages AnthropicMessager, model string) *Refiner {
	if model == "" {
		model = DefaultModel
	}
	return &Refiner{messages: messages, model: model}
}

// NewFromEnv builds a refiner from ANTHROPIC_API_KEY and REVIEW_LLM_MODEL.
// A missing key yields a disabled refiner, not an error.
func NewFromEnv() *Refiner {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return &Refiner{}
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return New(&c.Messages, strings.TrimSpace(os.Getenv("REVIEW_LLM_MODEL")))
}

// Enabled reports whether a credential was configured.
func (r *Refiner) Enabled() bool { return r.messages != nil }

// Refine returns a polished version of text, or text itself when the refiner
// is disabled, the input is blank, or the call fails. It never errors and
// never retries.
func (r *Refiner) Refine(ctx context.Context, text string) string {
	if r.messages == nil {
		log.Printf("refiner disabled_no_credential")
		return text
	}
	if strings.TrimSpace(text) == "" {
		return text
	}

	resp, err := r.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(r.model),
		MaxTokens:   1024,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(text))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		log.Printf("refiner call_failed model=%s err=%q", r.model, err.Error())
		return text
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	refined := strings.TrimSpace(sb.String())
	if refined == "" {
		log.Printf("refiner empty_response model=%s", r.model)
		return text
	}
	return refined
}
