package mount

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/weft-ui/weft/internal/service"
)

// ServiceCallError is a failed service call surfaced to the widget as an
// error value.
type ServiceCallError struct {
	Service   string
	Procedure string
	Message   string
}

func (e *ServiceCallError) Error() string {
	return fmt.Sprintf("service %s.%s: %s", e.Service, e.Procedure, e.Message)
}

// ServiceProxy is the widget-facing RPC surface bound at mount time. It
// forwards widget.services[name].method(args) calls to the registry,
// translating failed results into errors and successful results into values.
// Released when its widget unmounts; calls after release fail.
type ServiceProxy struct {
	registry *service.Registry
	released atomic.Bool
}

// NewServiceProxy binds a proxy to a service registry.
func NewServiceProxy(registry *service.Registry) *ServiceProxy {
	return &ServiceProxy{registry: registry}
}

// Call dispatches one procedure call on a named service.
func (p *ServiceProxy) Call(ctx context.Context, svc, procedure string, args ...any) (any, error) {
	if p.released.Load() {
		return nil, fmt.Errorf("service proxy released: widget is unmounted")
	}
	result := p.registry.Dispatch(ctx, svc, procedure, args)
	if !result.Success {
		return nil, &ServiceCallError{Service: svc, Procedure: procedure, Message: result.Error}
	}
	return result.Data, nil
}

// Services returns the names callable through this proxy.
func (p *ServiceProxy) Services() []string {
	if p.released.Load() {
		return nil
	}
	return p.registry.Names()
}

// Release detaches the proxy. Idempotent.
func (p *ServiceProxy) Release() {
	p.released.Store(true)
}

// Released reports whether the proxy has been released.
func (p *ServiceProxy) Released() bool {
	return p.released.Load()
}
