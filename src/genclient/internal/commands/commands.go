// Package commands is the host command surface: a registry of auxiliary
// commands that can be invoked with a single resource locator argument.
package commands

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// HandlerFunc handles a command invocation. The only argument beyond the
// context is a resource locator. Handlers have no return value and no way to
// signal failure to the invoker.
type HandlerFunc func(ctx context.Context, locator string)

// Registry tracks registered commands and dispatches invocations.
type Registry interface {
	// Register adds a command under the given identifier. The returned
	// release function removes the registration; calling it more than once
	// is safe.
	Register(id string, handler HandlerFunc) (release func(), err error)
	// Execute invokes the handler registered under id. Faults inside the
	// handler are logged and never propagated; invoking an unknown id is
	// also only logged.
	Execute(ctx context.Context, id string, locator string)
	// Commands returns the identifiers of all registered commands, sorted.
	Commands() []string
}

// Params are inbound parameters to initialize a new registry.
type Params struct {
	fx.In

	Logger *zap.SugaredLogger
}

type registry struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	logger   *zap.SugaredLogger
}

// New constructs an empty command registry.
func New(p Params) Registry {
	return &registry{
		handlers: make(map[string]HandlerFunc),
		logger:   p.Logger,
	}
}

func (r *registry) Register(id string, handler HandlerFunc) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[id]; ok {
		return nil, fmt.Errorf("command %q already registered", id)
	}
	r.handlers[id] = handler
	r.logger.Infow("registered command", "command", id)

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.handlers, id)
			r.logger.Infow("deregistered command", "command", id)
		})
	}, nil
}

func (r *registry) Execute(ctx context.Context, id string, locator string) {
	r.mu.Lock()
	handler, ok := r.handlers[id]
	r.mu.Unlock()

	if !ok {
		r.logger.Warnw("unknown command invoked", "command", id)
		return
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Errorw("command handler fault", "command", id, "fault", p)
		}
	}()
	handler(ctx, locator)
}

func (r *registry) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
