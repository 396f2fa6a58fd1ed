// Package resolve runs an ordered list of lookup strategies until one finds a
// value. Historical data is keyed inconsistently (by handle or by profile id),
// and the fallback order belongs in exactly one place instead of being
// re-written at every call site.
package resolve

import "context"

// Strategy tries one lookup. found=false with a nil error means the strategy
// ran cleanly but the value is not there; the next strategy is tried.
type Strategy[T any] func(ctx context.Context) (value T, found bool, err error)

// First tries strategies in order and returns the first found value. A
// failing strategy does not stop the chain; its error is only surfaced if
// every remaining strategy also comes up empty.
func First[T any](ctx context.Context, strategies ...Strategy[T]) (T, bool, error) {
	var zero T
	var lastErr error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return zero, false, err
		}
		v, found, err := s(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if found {
			return v, true, nil
		}
	}
	return zero, false, lastErr
}
