package server

import (
	"context"
	"sync"

	"github.com/todobridge/todobridge/internal/relay"
)

// ServerContext holds the shared state for the front ends: the relay
// facade plus a cancellable context used for coordinated shutdown.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	service  *relay.Service
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context wrapping the relay
// facade.
func NewServerContext(ctx context.Context, service *relay.Service) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		service: service,
	}
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Service returns the relay facade.
func (sc *ServerContext) Service() *relay.Service {
	return sc.service
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context. Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
