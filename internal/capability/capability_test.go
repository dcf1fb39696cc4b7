package capability

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nkapoor/taskflow/internal/knowledge"
	"github.com/tmc/langchaingo/llms"
)

func TestSlackUnconfiguredDegrades(t *testing.T) {
	c := NewSlackCapability(SlackConfig{})

	_, err := c.Invoke(context.Background(), `Post "Hello" to #general`)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if !strings.Contains(cfgErr.Error(), "not configured") {
		t.Errorf("error not descriptive: %v", cfgErr)
	}
}

func TestSlackParseFailureBeforeConfigCheck(t *testing.T) {
	c := NewSlackCapability(SlackConfig{})

	_, err := c.Invoke(context.Background(), "tell the team hello")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if !strings.Contains(parseErr.Error(), `Post "message" to #channel`) {
		t.Errorf("parse error must describe the expected format: %v", parseErr)
	}
}

func TestSMSUnconfiguredDegrades(t *testing.T) {
	c := NewSMSCapability(TwilioConfig{})

	_, err := c.Invoke(context.Background(), "Send SMS to +14155552671: hi")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestSMSNoNumberIsParseError(t *testing.T) {
	c := NewSMSCapability(TwilioConfig{})

	_, err := c.Invoke(context.Background(), "Send a message to Bob")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestCalendarMissingCredentials(t *testing.T) {
	c := NewCalendarCapability(CalendarConfig{
		CredentialsPath: filepath.Join(t.TempDir(), "credentials.json"),
		TokenPath:       filepath.Join(t.TempDir(), "token.json"),
	})

	_, err := c.Invoke(context.Background(), "Schedule a standup for tomorrow")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

// staticModel answers every prompt with a fixed string.
type staticModel struct {
	answer string
	called int
}

func (m *staticModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.called++
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.answer}},
	}, nil
}

func (m *staticModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	m.called++
	return m.answer, nil
}

func TestKnowledgeAddStoresRecord(t *testing.T) {
	dir := t.TempDir()
	store, err := knowledge.NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	c := NewKnowledgeCapability(store, &staticModel{})

	msg, err := c.Invoke(context.Background(), "Add knowledge: 'the sky is blue' in facts")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if !strings.Contains(msg, "facts.txt") {
		t.Errorf("confirmation = %q", msg)
	}

	data, err := os.ReadFile(filepath.Join(dir, "facts.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "the sky is blue" {
		t.Errorf("record = %q", string(data))
	}
}

func TestKnowledgeAddMalformedIsParseError(t *testing.T) {
	store, err := knowledge.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewKnowledgeCapability(store, &staticModel{})

	_, err = c.Invoke(context.Background(), "Add knowledge somehow")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestKnowledgeQueryEmptyCorpus(t *testing.T) {
	store, err := knowledge.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	model := &staticModel{answer: "should not be used"}
	c := NewKnowledgeCapability(store, model)

	msg, err := c.Invoke(context.Background(), "What is the wifi password?")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if !strings.Contains(msg, "Knowledge base is empty") {
		t.Errorf("reply = %q", msg)
	}
	if model.called != 0 {
		t.Error("model must not be called when the corpus is empty")
	}
}

func TestKnowledgeQueryAnswersFromCorpus(t *testing.T) {
	store, err := knowledge.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Put("facts", "the wifi password is hunter2"); err != nil {
		t.Fatal(err)
	}

	model := &staticModel{answer: "hunter2"}
	c := NewKnowledgeCapability(store, model)

	msg, err := c.Invoke(context.Background(), "Tell me about the wifi password")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if msg != "hunter2" {
		t.Errorf("answer = %q", msg)
	}
	if model.called != 1 {
		t.Errorf("model calls = %d, want 1", model.called)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	c := NewSlackCapability(SlackConfig{})
	reg.Register(c)

	if got := reg.Get(Slack); got != c {
		t.Error("registered capability not returned")
	}
	if got := reg.Get(Search); got != nil {
		t.Error("unregistered capability must be nil")
	}
}
