package credentials

import "sync"

// Memory keeps the triple in process memory. It is the default store for
// tests and short-lived tools.
type Memory struct {
	mutex  sync.Mutex
	tokens Tokens
}

var _ Store = (*Memory)(nil)

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(tokens Tokens) error {
	m.mutex.Lock()
	m.tokens = tokens
	m.mutex.Unlock()
	return nil
}

func (m *Memory) Load() (Tokens, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.tokens, nil
}

func (m *Memory) Clear() (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	had := !m.tokens.Empty()
	m.tokens = Tokens{}
	return had, nil
}

func (m *Memory) Close() error {
	return nil
}
