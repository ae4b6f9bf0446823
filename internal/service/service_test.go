package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_UnknownProcedure(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(NewMemoryStore("store"))

	result := reg.Dispatch(context.Background(), "store", "explode", nil)

	assert.False(t, result.Success)
	assert.Equal(t, "Unknown procedure: explode", result.Error)
	assert.GreaterOrEqual(t, result.DurationMs, 0.0)
}

func TestDispatch_UnknownService(t *testing.T) {
	reg := NewRegistry(nil)

	result := reg.Dispatch(context.Background(), "ghost", "get", []any{"k"})

	assert.False(t, result.Success)
	assert.Equal(t, "Unknown service: ghost", result.Error)
	assert.GreaterOrEqual(t, result.DurationMs, 0.0)
}

func TestDispatch_HandlerError(t *testing.T) {
	backend := NewTableBackend("svc", map[string]ProcFunc{
		"fail": func(context.Context, []any) (any, error) {
			return nil, errors.New("backend exploded")
		},
	})
	reg := NewRegistry(nil)
	reg.Register(backend)

	result := reg.Dispatch(context.Background(), "svc", "fail", nil)

	assert.False(t, result.Success)
	assert.Equal(t, "backend exploded", result.Error)
	assert.GreaterOrEqual(t, result.DurationMs, 0.0)
}

func TestDispatch_PanicRecovered(t *testing.T) {
	backend := NewTableBackend("svc", map[string]ProcFunc{
		"panic": func(context.Context, []any) (any, error) {
			panic("boom")
		},
	})
	reg := NewRegistry(nil)
	reg.Register(backend)

	var result Result
	require.NotPanics(t, func() {
		result = reg.Dispatch(context.Background(), "svc", "panic", nil)
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "boom")
}

func TestDispatch_Success(t *testing.T) {
	backend := NewTableBackend("math", map[string]ProcFunc{
		"add": func(_ context.Context, args []any) (any, error) {
			return args[0].(int) + args[1].(int), nil
		},
	})
	reg := NewRegistry(nil)
	reg.Register(backend)

	result := reg.Dispatch(context.Background(), "math", "add", []any{2, 3})

	assert.True(t, result.Success)
	assert.Equal(t, 5, result.Data)
	assert.Empty(t, result.Error)
}

func TestTableBackend_Procedures(t *testing.T) {
	backend := NewTableBackend("svc", map[string]ProcFunc{
		"b": nil, "a": nil, "c": nil,
	})
	assert.Equal(t, []string{"a", "b", "c"}, backend.Procedures())
}

func TestDispose_ExactlyOnce(t *testing.T) {
	calls := 0
	backend := NewTableBackend("svc", nil)
	backend.OnDispose(func() error {
		calls++
		return nil
	})

	require.NoError(t, backend.Dispose())
	require.NoError(t, backend.Dispose())
	assert.Equal(t, 1, calls)
}

func TestDispose_ReturnsFirstError(t *testing.T) {
	backend := NewTableBackend("svc", nil)
	backend.OnDispose(func() error { return fmt.Errorf("first") })
	backend.OnDispose(func() error { return fmt.Errorf("second") })

	err := backend.Dispose()
	require.Error(t, err)
	assert.Equal(t, "first", err.Error())
	// Second call is a no-op reporting the same outcome
	assert.Equal(t, err, backend.Dispose())
}

func TestRegistry_DisposeRemoves(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(NewMemoryStore("store"))

	require.NoError(t, reg.Dispose("store"))
	_, ok := reg.Lookup("store")
	assert.False(t, ok)

	// Disposing an unregistered name is a no-op
	assert.NoError(t, reg.Dispose("store"))
}

func TestRegistry_DisposeAll(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(NewMemoryStore("a"))
	reg.Register(NewMemoryStore("b"))

	require.NoError(t, reg.DisposeAll())
	assert.Empty(t, reg.Names())
}

func TestRegistry_ReRegisterOverwrites(t *testing.T) {
	reg := NewRegistry(nil)
	first := NewMemoryStore("store")
	second := NewMemoryStore("store")
	reg.Register(first)
	reg.Register(second)

	got, ok := reg.Lookup("store")
	require.True(t, ok)
	assert.Same(t, Backend(second), got)
}
