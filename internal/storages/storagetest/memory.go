// Package storagetest provides an in-memory credential store for tests.
package storagetest

import (
	"context"
	"sort"
	"sync"

	"github.com/Krchnk/gw-crypto-dashboard/internal/passwords"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages"
)

// Memory implements storages.Storage on a map. Setting Err makes every
// operation fail with it.
type Memory struct {
	mu     sync.Mutex
	hashes map[string]string
	Err    error
}

func NewMemory() *Memory {
	return &Memory{hashes: make(map[string]string)}
}

func (m *Memory) Initialize(context.Context) error { return m.Err }

func (m *Memory) Register(_ context.Context, identifier, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if identifier == "" {
		return storages.ErrEmptyIdentifier
	}
	if _, ok := m.hashes[identifier]; ok {
		return storages.ErrIdentifierExists
	}
	m.hashes[identifier], _ = passwords.SHA256{}.Hash(password)
	return nil
}

func (m *Memory) Verify(_ context.Context, identifier, password string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	h, ok := m.hashes[identifier]
	if !ok {
		return false, nil
	}
	return passwords.Compare(h, password), nil
}

func (m *Memory) ListIdentifiers(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(m.hashes))
	for id := range m.hashes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) UpdatePassword(_ context.Context, identifier, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.hashes[identifier]; !ok {
		return storages.ErrUserNotFound
	}
	m.hashes[identifier], _ = passwords.SHA256{}.Hash(newPassword)
	return nil
}

func (m *Memory) Ping(context.Context) error { return m.Err }

func (m *Memory) Close() error { return nil }
