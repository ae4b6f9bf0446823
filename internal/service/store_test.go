package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatchOK(t *testing.T, reg *Registry, svc, proc string, args ...any) any {
	t.Helper()
	result := reg.Dispatch(context.Background(), svc, proc, args)
	require.True(t, result.Success, "dispatch %s.%s failed: %s", svc, proc, result.Error)
	return result.Data
}

func TestMemoryStore_SetGetDelete(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(NewMemoryStore("store"))

	assert.Equal(t, true, dispatchOK(t, reg, "store", "set", "greeting", "hello"))
	assert.Equal(t, "hello", dispatchOK(t, reg, "store", "get", "greeting"))
	assert.Equal(t, true, dispatchOK(t, reg, "store", "has", "greeting"))

	assert.Equal(t, true, dispatchOK(t, reg, "store", "delete", "greeting"))
	assert.Equal(t, false, dispatchOK(t, reg, "store", "delete", "greeting"))
	assert.Nil(t, dispatchOK(t, reg, "store", "get", "greeting"))
	assert.Equal(t, false, dispatchOK(t, reg, "store", "has", "greeting"))
}

func TestMemoryStore_KeysSorted(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(NewMemoryStore("store"))

	dispatchOK(t, reg, "store", "set", "c", 1)
	dispatchOK(t, reg, "store", "set", "a", 2)
	dispatchOK(t, reg, "store", "set", "b", 3)

	assert.Equal(t, []string{"a", "b", "c"}, dispatchOK(t, reg, "store", "keys"))
}

func TestMemoryStore_Snapshot(t *testing.T) {
	reg := NewRegistry(nil)
	store := NewMemoryStore("store")
	reg.Register(store)

	dispatchOK(t, reg, "store", "set", "x", 1)
	dispatchOK(t, reg, "store", "set", "y", 2)

	snap := dispatchOK(t, reg, "store", "snapshot").(map[string]any)
	assert.Equal(t, map[string]any{"x": 1, "y": 2}, snap)

	// Snapshot is a copy, not a view
	snap["x"] = 99
	assert.Equal(t, 1, dispatchOK(t, reg, "store", "get", "x"))
}

func TestMemoryStore_MissingKeyArg(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(NewMemoryStore("store"))

	result := reg.Dispatch(context.Background(), "store", "get", nil)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "requires a key")

	result = reg.Dispatch(context.Background(), "store", "set", []any{"only-key"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "requires a value")
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore("store")
	reg := NewRegistry(nil)
	reg.Register(store)

	var events []string
	unsub := store.Subscribe(func(key string, value any) {
		events = append(events, key)
	})

	dispatchOK(t, reg, "store", "set", "a", 1)
	dispatchOK(t, reg, "store", "delete", "a")
	// Deleting an absent key does not notify
	dispatchOK(t, reg, "store", "delete", "a")

	assert.Equal(t, []string{"a", "a"}, events)

	unsub()
	dispatchOK(t, reg, "store", "set", "b", 2)
	assert.Len(t, events, 2)
}

func TestMemoryStore_DisposeClearsListeners(t *testing.T) {
	store := NewMemoryStore("store")

	fired := false
	store.Subscribe(func(string, any) { fired = true })
	require.NoError(t, store.Dispose())

	store.notify("k", "v")
	assert.False(t, fired)
}
