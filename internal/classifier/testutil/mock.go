// Package testutil provides a scripted Completer for tests.
package testutil

import (
	"context"
	"sync"
)

// Reply is one scripted answer. Err takes precedence over Content.
type Reply struct {
	Content string
	Err     error
}

// MockCompleter returns its Replies in order and records every prompt it
// receives. Once the script runs out it keeps returning Fallback.
//
//	mock := &testutil.MockCompleter{
//	    Replies: []testutil.Reply{
//	        {Content: `{"is_subscription": true, "normalized_name": "Netflix"}`},
//	        {Err: errors.New("connection reset")},
//	    },
//	}
type MockCompleter struct {
	mu       sync.Mutex
	Replies  []Reply
	Fallback Reply
	prompts  []string
}

func (m *MockCompleter) Name() string { return "mock" }

func (m *MockCompleter) Complete(_ context.Context, _, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reply := m.Fallback
	if idx := len(m.prompts); idx < len(m.Replies) {
		reply = m.Replies[idx]
	}
	m.prompts = append(m.prompts, prompt)

	if reply.Err != nil {
		return "", reply.Err
	}
	return reply.Content, nil
}

// Prompts returns the user prompts received so far.
func (m *MockCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// CallCount returns the number of Complete calls.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
