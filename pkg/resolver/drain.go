package resolver

import (
	"context"
)

// AttemptFunc tries to construct the object for ref. It returns false when
// the object cannot be built yet.
type AttemptFunc[T any] func(ctx context.Context, ref Reference) (T, bool)

// DrainStats describes a Drain run.
type DrainStats struct {
	// Passes is the number of passes that attempted at least one candidate.
	Passes int

	// Resolved lists the references resolved by the drain, in order.
	Resolved []Reference
}

// Drain resolves candidates until a fixpoint. Each pass attempts every
// candidate that is not yet resolved and resolves the successes. The loop
// stops when a pass resolves nothing or no unresolved candidate remains,
// so it runs at most len(candidates) passes. Candidates left unresolved are
// not an error; they stay pending and show up in Unresolved.
//
// The context is checked before each pass and each attempt.
func (r *Resolver[T]) Drain(ctx context.Context, candidates func() []Reference, attempt AttemptFunc[T]) (DrainStats, error) {
	var stats DrainStats

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		var todo []Reference
		for _, ref := range candidates() {
			if !r.IsResolved(ref) {
				todo = append(todo, ref)
			}
		}
		if len(todo) == 0 {
			return stats, nil
		}

		stats.Passes++
		progress := 0
		for _, ref := range todo {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if r.IsResolved(ref) {
				continue
			}

			obj, ok := attempt(ctx, ref)
			if ok && r.Resolve(ref, obj) {
				progress++
				stats.Resolved = append(stats.Resolved, ref)
			}
		}

		if progress == 0 {
			return stats, nil
		}
	}
}
