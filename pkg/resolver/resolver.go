package resolver

import (
	"iter"
)

// Obligation is a callback waiting for a referenced object. It fires at
// most once.
type Obligation[T any] func(obj T)

type pendingEntry[T any] struct {
	ref         Reference
	obligations []Obligation[T]
}

type resolvedEntry[T any] struct {
	ref Reference
	obj T
}

// Resolver maps references to pending obligations or resolved objects.
//
// A key is either pending or resolved, never both, and resolution never
// reverts. Obligations for one key fire in registration order. A Resolver is
// owned by a single import and is not safe for concurrent use.
type Resolver[T comparable] struct {
	pending  map[string]*pendingEntry[T]
	resolved map[string]resolvedEntry[T]

	// order holds every key in first-seen order so iteration is
	// deterministic.
	order []string
	seen  map[string]bool
}

// New creates an empty resolver.
func New[T comparable]() *Resolver[T] {
	return &Resolver[T]{
		pending:  make(map[string]*pendingEntry[T]),
		resolved: make(map[string]resolvedEntry[T]),
		seen:     make(map[string]bool),
	}
}

func (r *Resolver[T]) remember(key string) {
	if !r.seen[key] {
		r.seen[key] = true
		r.order = append(r.order, key)
	}
}

// Register binds obligation to ref. If ref is already resolved the
// obligation fires immediately. A nil obligation registers ref as pending
// without a callback.
func (r *Resolver[T]) Register(ref Reference, obligation Obligation[T]) {
	key := ref.Key()

	if res, ok := r.resolved[key]; ok {
		if obligation != nil {
			obligation(res.obj)
		}
		return
	}

	r.remember(key)
	entry, ok := r.pending[key]
	if !ok {
		entry = &pendingEntry[T]{ref: ref}
		r.pending[key] = entry
	}
	if obligation != nil {
		entry.obligations = append(entry.obligations, obligation)
	}
}

// Resolve records obj for ref and fires its pending obligations in order.
// A zero obj is ignored. Resolving an already resolved reference replaces
// the object without firing anything again. It reports whether ref became
// resolved by this call.
func (r *Resolver[T]) Resolve(ref Reference, obj T) bool {
	var zero T
	if obj == zero {
		return false
	}

	key := ref.Key()
	_, already := r.resolved[key]

	r.remember(key)
	r.resolved[key] = resolvedEntry[T]{ref: ref, obj: obj}

	entry, ok := r.pending[key]
	if ok {
		delete(r.pending, key)
		for _, obligation := range entry.obligations {
			obligation(obj)
		}
	}

	return !already
}

// Lookup returns the resolved object for ref.
func (r *Resolver[T]) Lookup(ref Reference) (T, bool) {
	res, ok := r.resolved[ref.Key()]
	return res.obj, ok
}

// IsResolved reports whether ref is resolved.
func (r *Resolver[T]) IsResolved(ref Reference) bool {
	_, ok := r.resolved[ref.Key()]
	return ok
}

// IsPending reports whether ref is registered and unresolved.
func (r *Resolver[T]) IsPending(ref Reference) bool {
	_, ok := r.pending[ref.Key()]
	return ok
}

// Waiting returns the number of obligations queued on ref.
func (r *Resolver[T]) Waiting(ref Reference) int {
	if entry, ok := r.pending[ref.Key()]; ok {
		return len(entry.obligations)
	}
	return 0
}

// Unresolved yields the pending references in first registration order.
// The sequence is lazy; it reflects the state at each step.
func (r *Resolver[T]) Unresolved() iter.Seq[Reference] {
	return func(yield func(Reference) bool) {
		for _, key := range r.order {
			entry, ok := r.pending[key]
			if !ok {
				continue
			}
			if !yield(entry.ref) {
				return
			}
		}
	}
}

// UnresolvedList collects Unresolved into a slice.
func (r *Resolver[T]) UnresolvedList() []Reference {
	var refs []Reference
	for ref := range r.Unresolved() {
		refs = append(refs, ref)
	}
	return refs
}

// Pending returns the pending references of one kind, in registration order.
func (r *Resolver[T]) Pending(kind string) []Reference {
	var refs []Reference
	for ref := range r.Unresolved() {
		if ref.Kind() == kind {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Resolved returns the resolved references in first-seen order.
func (r *Resolver[T]) Resolved() []Reference {
	refs := make([]Reference, 0, len(r.resolved))
	for _, key := range r.order {
		if res, ok := r.resolved[key]; ok {
			refs = append(refs, res.ref)
		}
	}
	return refs
}

// Retype moves a pending reference and its obligations to the same
// location and name under another kind, and returns the new reference. If
// the new reference is already resolved the obligations fire immediately.
func (r *Resolver[T]) Retype(ref Reference, kind string) Reference {
	moved := ref.WithKind(kind)
	oldKey, newKey := ref.Key(), moved.Key()
	if oldKey == newKey {
		return moved
	}

	entry, ok := r.pending[oldKey]
	if !ok {
		return moved
	}
	delete(r.pending, oldKey)

	if len(entry.obligations) == 0 {
		r.Register(moved, nil)
	}
	for _, obligation := range entry.obligations {
		r.Register(moved, obligation)
	}
	return moved
}

// Stats returns the number of pending and resolved references.
func (r *Resolver[T]) Stats() (pending, resolved int) {
	return len(r.pending), len(r.resolved)
}
