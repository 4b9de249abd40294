package completion

import (
	"context"
	"encoding/json"
	"sync"
)

// Mock is a Provider for tests. Responses are returned in order; the last
// one repeats. Err, when set, is returned instead.
type Mock struct {
	ProviderName string
	Responses    []string
	Err          error

	mu       sync.Mutex
	requests []Request
}

func (m *Mock) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

func (m *Mock) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	m.mu.Lock()
	n := len(m.requests)
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if n >= len(m.Responses) {
		n = len(m.Responses) - 1
	}
	return ExtractJSON(m.Responses[n])
}

func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
