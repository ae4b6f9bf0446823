package mount

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weft-ui/weft/internal/service"
)

func TestServiceProxy_CallSuccess(t *testing.T) {
	reg := service.NewRegistry(nil)
	reg.Register(service.NewMemoryStore("store"))
	proxy := NewServiceProxy(reg)

	_, err := proxy.Call(context.Background(), "store", "set", "k", "v")
	require.NoError(t, err)

	got, err := proxy.Call(context.Background(), "store", "get", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestServiceProxy_FailureBecomesError(t *testing.T) {
	reg := service.NewRegistry(nil)
	reg.Register(service.NewMemoryStore("store"))
	proxy := NewServiceProxy(reg)

	_, err := proxy.Call(context.Background(), "store", "teleport")

	var callErr *ServiceCallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "store", callErr.Service)
	assert.Equal(t, "teleport", callErr.Procedure)
	assert.Equal(t, "Unknown procedure: teleport", callErr.Message)
}

func TestServiceProxy_Services(t *testing.T) {
	reg := service.NewRegistry(nil)
	reg.Register(service.NewMemoryStore("store"))
	reg.Register(service.NewMemoryStore("prefs"))
	proxy := NewServiceProxy(reg)

	assert.Equal(t, []string{"prefs", "store"}, proxy.Services())
}

func TestServiceProxy_Release(t *testing.T) {
	reg := service.NewRegistry(nil)
	reg.Register(service.NewMemoryStore("store"))
	proxy := NewServiceProxy(reg)

	proxy.Release()
	proxy.Release()

	assert.True(t, proxy.Released())
	assert.Nil(t, proxy.Services())

	_, err := proxy.Call(context.Background(), "store", "get", "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmounted")
}
