package store

import (
	"context"
	"sync"

	sageauth "github.com/sageflow/sageauth"
)

// Memory is an in-process store. It never fails and is safe for
// concurrent use.
type Memory struct {
	mu    sync.Mutex
	token string
	user  *sageauth.User
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *Memory) SetToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) ClearToken(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *Memory) Load(context.Context) (*sageauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user.Clone(), nil
}

func (m *Memory) Save(_ context.Context, user sageauth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user.Clone()
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	return nil
}
