package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process key/value service backend. It exposes the
// store-style procedure vocabulary: get, set, delete, has, keys, snapshot.
// Change listeners registered through Subscribe are released by Dispose.
type MemoryStore struct {
	*TableBackend

	mu        sync.RWMutex
	data      map[string]any
	listeners map[int]func(key string, value any)
	nextSub   int
}

// NewMemoryStore creates a memory-backed store registered under name.
func NewMemoryStore(name string) *MemoryStore {
	s := &MemoryStore{
		data:      make(map[string]any),
		listeners: make(map[int]func(string, any)),
	}
	s.TableBackend = NewTableBackend(name, map[string]ProcFunc{
		"get":      s.procGet,
		"set":      s.procSet,
		"delete":   s.procDelete,
		"has":      s.procHas,
		"keys":     s.procKeys,
		"snapshot": s.procSnapshot,
	})
	s.TableBackend.OnDispose(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners = make(map[int]func(string, any))
		return nil
	})
	return s
}

// Subscribe registers a change listener and returns an unsubscribe function.
// All listeners are released when the backend is disposed.
func (s *MemoryStore) Subscribe(fn func(key string, value any)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *MemoryStore) notify(key string, value any) {
	s.mu.RLock()
	fns := make([]func(string, any), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(key, value)
	}
}

func (s *MemoryStore) procGet(_ context.Context, args []any) (any, error) {
	key, err := stringArg(args, 0, "get")
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key], nil
}

func (s *MemoryStore) procSet(_ context.Context, args []any) (any, error) {
	key, err := stringArg(args, 0, "set")
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("set requires a value argument")
	}
	s.mu.Lock()
	s.data[key] = args[1]
	s.mu.Unlock()
	s.notify(key, args[1])
	return true, nil
}

func (s *MemoryStore) procDelete(_ context.Context, args []any) (any, error) {
	key, err := stringArg(args, 0, "delete")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	_, existed := s.data[key]
	delete(s.data, key)
	s.mu.Unlock()
	if existed {
		s.notify(key, nil)
	}
	return existed, nil
}

func (s *MemoryStore) procHas(_ context.Context, args []any) (any, error) {
	key, err := stringArg(args, 0, "has")
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok, nil
}

func (s *MemoryStore) procKeys(_ context.Context, _ []any) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) procSnapshot(_ context.Context, _ []any) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]any, len(s.data))
	for k, v := range s.data {
		snapshot[k] = v
	}
	return snapshot, nil
}

func stringArg(args []any, idx int, procedure string) (string, error) {
	if idx >= len(args) {
		return "", fmt.Errorf("%s requires a key argument", procedure)
	}
	key, ok := args[idx].(string)
	if !ok {
		return "", fmt.Errorf("%s key must be a string, got %T", procedure, args[idx])
	}
	return key, nil
}
