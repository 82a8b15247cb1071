package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real. Guarda el ultimo prompt recibido.
type MockClient struct {
	Response string
	Err      error

	mu         sync.Mutex
	lastPrompt string
	calls      int
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.lastPrompt = prompt
	m.calls++
	m.mu.Unlock()
	return m.Response, m.Err
}

func (m *MockClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
