// Package llmtest provides an llm.Client test double.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/cv-tailor/internal/llm"
)

// Reply is one scripted response of a MockClient.
type Reply struct {
	Text string
	Err  error
}

// MockClient implements llm.Client by returning scripted replies in order.
// Every prompt it receives is recorded.
type MockClient struct {
	mu      sync.Mutex
	Replies []Reply
	Prompts []string
	Tiers   []llm.ModelTier
	Closed  bool
}

// NewMockClient returns a MockClient that answers with texts in order.
func NewMockClient(texts ...string) *MockClient {
	m := &MockClient{}
	for _, text := range texts {
		m.Replies = append(m.Replies, Reply{Text: text})
	}
	return m
}

func (m *MockClient) next(prompt string, tier llm.ModelTier) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	m.Tiers = append(m.Tiers, tier)
	if len(m.Replies) == 0 {
		return "", errors.New("mock client: no scripted reply")
	}
	reply := m.Replies[0]
	m.Replies = m.Replies[1:]
	return reply.Text, reply.Err
}

// GenerateContent returns the next scripted reply.
func (m *MockClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.next(prompt, tier)
}

// GenerateJSON returns the next scripted reply.
func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return m.GenerateContent(ctx, prompt, tier)
}

// GetModel returns a fixed model name.
func (m *MockClient) GetModel(llm.ModelTier) string {
	return "mock-model"
}

// Close marks the client closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Calls returns the number of prompts received.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
