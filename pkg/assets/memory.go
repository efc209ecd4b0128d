package assets

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*Object // by path
	schema  Schema
	closed  bool
	logger  *slog.Logger
}

// NewMemoryStore creates an empty in-memory store. A nil schema accepts
// every property.
func NewMemoryStore(schema Schema) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]*Object),
		schema:  schema,
		logger:  slog.Default().With("component", "assets.memory"),
	}
}

// LocateOrCreate implements Store.
func (m *MemoryStore) LocateOrCreate(ctx context.Context, kind, location, name string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, NewStoreError("memory", "locate", ErrClosed)
	}

	path := ObjectPath(location, name)
	if obj, ok := m.objects[path]; ok {
		if obj.Kind != kind {
			return nil, NewStoreError("memory", "locate",
				fmt.Errorf("%w: %s is %s, not %s", ErrKindConflict, path, obj.Kind, kind))
		}
		return obj, nil
	}

	now := time.Now()
	obj := &Object{
		ID:         uuid.New().String(),
		Kind:       kind,
		Location:   location,
		Name:       name,
		Properties: make(map[string]string),
		Links:      make(map[string]string),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.objects[path] = obj

	m.logger.Debug("object created", "kind", kind, "path", path)
	return obj, nil
}

// Lookup implements Store.
func (m *MemoryStore) Lookup(ctx context.Context, location, name string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[ObjectPath(location, name)]
	if !ok {
		return nil, ErrNotFound
	}
	return obj, nil
}

// ApplyProperty implements Store.
func (m *MemoryStore) ApplyProperty(ctx context.Context, obj *Object, name, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.schema.Allows(obj.Kind, name) {
		return fmt.Errorf("%w: %s.%s", ErrUnsupportedProperty, obj.Kind, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.stored(obj, "apply_property")
	if err != nil {
		return err
	}
	stored.Properties[name] = value
	stored.UpdatedAt = time.Now()
	return nil
}

// Link implements Store.
func (m *MemoryStore) Link(ctx context.Context, obj *Object, slot string, target *Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if target == nil {
		return NewStoreError("memory", "link", fmt.Errorf("nil target for %s", slot))
	}
	if !m.schema.Allows(obj.Kind, slot) {
		return fmt.Errorf("%w: %s.%s", ErrUnsupportedProperty, obj.Kind, slot)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.stored(obj, "link")
	if err != nil {
		return err
	}
	stored.Links[slot] = target.Path()
	stored.UpdatedAt = time.Now()
	return nil
}

// Reset implements Store.
func (m *MemoryStore) Reset(ctx context.Context, obj *Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.stored(obj, "reset")
	if err != nil {
		return err
	}
	clear(stored.Properties)
	clear(stored.Links)
	stored.UpdatedAt = time.Now()
	return nil
}

// Finalize implements Store.
func (m *MemoryStore) Finalize(ctx context.Context, obj *Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.stored(obj, "finalize")
	if err != nil {
		return err
	}
	stored.Finalized++
	stored.UpdatedAt = time.Now()
	return nil
}

// Objects implements Store. The returned objects are the stored handles.
func (m *MemoryStore) Objects(ctx context.Context, kind string) ([]*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Object
	for _, obj := range m.objects {
		if kind == "" || obj.Kind == kind {
			result = append(result, obj)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path() < result[j].Path() })
	return result, nil
}

// Count returns the number of stored objects.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Ping fails once the store is closed.
func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return NewStoreError("memory", "ping", ErrClosed)
	}
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// stored returns the canonical handle for obj. Callers hold m.mu.
func (m *MemoryStore) stored(obj *Object, op string) (*Object, error) {
	if m.closed {
		return nil, NewStoreError("memory", op, ErrClosed)
	}
	if obj == nil {
		return nil, NewStoreError("memory", op, fmt.Errorf("nil object"))
	}
	stored, ok := m.objects[obj.Path()]
	if !ok {
		return nil, NewStoreError("memory", op, fmt.Errorf("%w: %s", ErrNotFound, obj.Path()))
	}
	return stored, nil
}
