// Package resolve discovers a valid execution order for interdependent database
// objects by attempting each one until a full sweep makes no progress.
//
// No dependency graph is consulted: a failed attempt means "not ready yet" and a
// successful one means "done". Attempts are strictly sequential since the
// failure signal is only meaningful when nothing else touches the database.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pgtk/pgtk/internal/logger"
)

// Named is implemented by items that can be reported by qualified name
type Named interface {
	QualifiedName() string
}

// Attempt performs the side effect for one item. A nil error removes the item
// from the pending set; any other error leaves it pending for the next sweep,
// unless it was wrapped with Abort.
type Attempt[T Named] func(ctx context.Context, item T) error

// Result is the outcome of a converged run
type Result[T Named] struct {
	// Applied holds items in the order their attempt succeeded.
	// Position i corresponds to realized order i+1.
	Applied []T
	// Sweeps is the number of full passes over the pending set.
	Sweeps int
}

// Unresolved pairs an item that never succeeded with its most recent failure
type Unresolved[T Named] struct {
	Item    T
	LastErr error
}

// DivergenceError is returned when a sweep completes without resolving anything
type DivergenceError[T Named] struct {
	Sweep      int
	Applied    int
	Unresolved []Unresolved[T]
}

func (e *DivergenceError[T]) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unable to resolve %d objects after %d sweeps (%d resolved):", len(e.Unresolved), e.Sweep, e.Applied)
	for _, u := range e.Unresolved {
		b.WriteString("\n  ")
		b.WriteString(u.Item.QualifiedName())
		if u.LastErr != nil {
			b.WriteString(": ")
			b.WriteString(u.LastErr.Error())
		}
	}
	return b.String()
}

// Names returns the qualified names of every unresolved item
func (e *DivergenceError[T]) Names() []string {
	names := make([]string, 0, len(e.Unresolved))
	for _, u := range e.Unresolved {
		names = append(names, u.Item.QualifiedName())
	}
	return names
}

type abortError struct {
	err error
}

func (e *abortError) Error() string { return e.err.Error() }
func (e *abortError) Unwrap() error { return e.err }

// Abort marks an attempt failure as fatal. Resolve stops immediately and
// returns the error instead of retrying the item.
func Abort(err error) error {
	if err == nil {
		return nil
	}
	return &abortError{err: err}
}

// IsAbort reports whether err was produced by Abort
func IsAbort(err error) bool {
	var ab *abortError
	return errors.As(err, &ab)
}

// Resolve repeatedly sweeps items in order, calling attempt on each pending one.
//
// A successful item is removed and the scan continues at the same position, so
// an item shifted into that slot is visited within the same sweep. The run ends
// when nothing is pending, or with a *DivergenceError when a sweep removes
// nothing. The input slice is not modified.
func Resolve[T Named](ctx context.Context, items []T, attempt Attempt[T]) (*Result[T], error) {
	log := logger.Get()

	// each pending entry carries its own last failure, so items that share a
	// qualified name never overwrite each other's error
	pending := make([]Unresolved[T], len(items))
	for i, item := range items {
		pending[i].Item = item
	}

	result := &Result[T]{Applied: make([]T, 0, len(items))}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result.Sweeps++
		startCount := len(pending)

		idx := 0
		for idx < len(pending) {
			item := pending[idx].Item

			err := attempt(ctx, item)
			if err == nil {
				result.Applied = append(result.Applied, item)
				pending = append(pending[:idx], pending[idx+1:]...)
				continue
			}
			var ab *abortError
			if errors.As(err, &ab) {
				return nil, fmt.Errorf("%s: %w", item.QualifiedName(), ab.err)
			}

			pending[idx].LastErr = err
			idx++
		}

		log.Debug("Sweep finished",
			"sweep", result.Sweeps,
			"resolved", startCount-len(pending),
			"pending", len(pending),
		)

		if len(pending) == startCount {
			return nil, &DivergenceError[T]{
				Sweep:      result.Sweeps,
				Applied:    len(result.Applied),
				Unresolved: pending,
			}
		}
	}

	return result, nil
}
