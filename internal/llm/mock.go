package llm

import (
	"context"
	"sync"
)

// MockProvider is a scripted Provider for tests. Responses are returned in
// order; the last one repeats. Chat calls are recorded so tests can assert
// on call counts and prompt contents.
type MockProvider struct {
	mu        sync.Mutex
	Responses []string
	Err       error

	ChatCalls   []ChatCall
	VisionCalls int
}

// ChatCall records one Chat invocation.
type ChatCall struct {
	Messages []Message
	Opts     ChatOptions
}

func (m *MockProvider) Chat(_ context.Context, messages []Message, opts ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChatCalls = append(m.ChatCalls, ChatCall{Messages: messages, Opts: opts})
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	idx := len(m.ChatCalls) - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

func (m *MockProvider) VisionAnalyze(_ context.Context, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.VisionCalls++
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	return m.Responses[0], nil
}

// CallCount returns the number of Chat calls made so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls)
}

// LastPrompt returns the content of the last message of the last Chat call,
// or an empty string if no calls were made.
func (m *MockProvider) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ChatCalls) == 0 {
		return ""
	}
	msgs := m.ChatCalls[len(m.ChatCalls)-1].Messages
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Content
}
