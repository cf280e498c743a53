package refiner

import (
	"context"
	"errors"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// mockMessager implements AnthropicMessager for testing.
type mockMessager struct {
	response *anthropic.Message
	err      error
	calls    int
	models   []string
}

func (m *mockMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	m.calls++
	m.models = append(m.models, string(params.Model))
	return m.response, m.err
}

func newMockMessage(text string) *anthropic.Message {
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: text},
		},
	}
}

func TestRefineSuccess(t *testing.T) {
	mock := &mockMessager{response: newMockMessage("  The installation was excellent.  ")}
	r := New(mock, "test-model")

	got := r.Refine(context.Background(), "the instal was grate")
	if got != "The installation was excellent." {
		t.Fatalf("refined = %q", got)
	}
	if mock.calls != 1 || mock.models[0] != "test-model" {
		t.Fatalf("calls = %d models = %v", mock.calls, mock.models)
	}
}

func TestRefineDisabledReturnsInput(t *testing.T) {
	var r Refiner
	if got := r.Refine(context.Background(), "original"); got != "original" {
		t.Fatalf("disabled refiner returned %q", got)
	}
	if r.Enabled() {
		t.Fatal("zero refiner must report disabled")
	}
}

func TestRefineTransportFailureReturnsInput(t *testing.T) {
	mock := &mockMessager{err: errors.New("status 500: upstream unavailable")}
	r := New(mock, "test-model")

	if got := r.Refine(context.Background(), "keep me"); got != "keep me" {
		t.Fatalf("failure fallback = %q, want input", got)
	}
}

func TestRefineEmptyResponseReturnsInput(t *testing.T) {
	mock := &mockMessager{response: &anthropic.Message{Content: []anthropic.ContentBlockUnion{}}}
	r := New(mock, "test-model")

	if got := r.Refine(context.Background(), "keep me"); got != "keep me" {
		t.Fatalf("empty-response fallback = %q, want input", got)
	}
}

func TestRefineBlankInputSkipsCall(t *testing.T) {
	mock := &mockMessager{response: newMockMessage("should not be used")}
	r := New(mock, "test-model")

	if got := r.Refine(context.Background(), "   "); got != "   " {
		t.Fatalf("blank input = %q, want passthrough", got)
	}
	if mock.calls != 0 {
		t.Fatal("blank input must not reach the API")
	}
}

func TestNewFromEnvWithoutKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if r := NewFromEnv(); r.Enabled() {
		t.Fatal("missing key must yield a disabled refiner")
	}
}

func TestNewDefaultsModel(t *testing.T) {
	r := New(&mockMessager{}, "")
	if r.model != DefaultModel {
		t.Fatalf("model = %q, want %q", r.model, DefaultModel)
	}
}
