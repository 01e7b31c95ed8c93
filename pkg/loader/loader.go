package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vango-dev/vnav/pkg/component"
	"github.com/vango-dev/vnav/pkg/route"
)

// ErrNotFound is returned when a component source does not exist.
var ErrNotFound = errors.New("loader: component source not found")

// Func is an import hook. It is the same type routes carry in Import.
type Func = route.ImportFunc

// Static returns a hook that registers f under name.
func Static(reg *component.Registry, name string, f component.Factory) Func {
	return func(context.Context) error {
		reg.Register(name, f)
		return nil
	}
}

// Chain returns a hook that tries each hook in order until one succeeds.
// Hooks that fail with ErrNotFound fall through to the next; any other
// error stops the chain.
func Chain(hooks ...Func) Func {
	return func(ctx context.Context) error {
		for _, h := range hooks {
			err := h(ctx)
			if err == nil {
				return nil
			}
			if !errors.Is(err, ErrNotFound) {
				return err
			}
		}
		return ErrNotFound
	}
}

// WithTimeout bounds a hook's running time.
func WithTimeout(d time.Duration, h Func) Func {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		if err := h(ctx); err != nil {
			return fmt.Errorf("loader: import within %s: %w", d, err)
		}
		return nil
	}
}
