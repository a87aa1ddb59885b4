package marketplace

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Collection is a typed view over one storage key holding a JSON sequence of
// T. It keeps an in-memory copy of the persisted sequence and guarantees the
// refresh contract: after any successful mutation the in-memory view equals
// what is on disk, and after a failed write the view is left exactly as it
// was (no phantom entries).
//
// Every mutation is a whole-blob read-modify-write under the store's per-key
// mutex. That serializes writers within the process; there is still no
// cross-process coordination, so the last writer wins on the whole blob.
type Collection[T any] struct {
	store *Store
	key   string

	loaded bool
	items  []T
}

// NewCollection binds a collection of T to the given storage key.
func NewCollection[T any](store *Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// Key returns the storage key this collection persists under.
func (c *Collection[T]) Key() string { return c.key }

// loadLocked reads and decodes the persisted sequence. Caller must hold the
// key lock. An absent key decodes to an empty sequence; a present but
// unparseable blob is a storage error, never silently "no data".
func (c *Collection[T]) loadLocked() ([]T, error) {
	raw, err := c.store.Get(c.key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &StorageError{Op: "read", Key: c.key, Err: fmt.Errorf("corrupt blob: %w", err)}
	}
	return items, nil
}

func (c *Collection[T]) persistLocked(items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return &StorageError{Op: "write", Key: c.key, Err: err}
	}
	if err := c.store.Put(c.key, raw); err != nil {
		return err
	}
	c.items = items
	c.loaded = true
	zap.S().Debugw("collection persisted", "key", c.key, "count", len(items))
	return nil
}

// Mutate atomically loads the full persisted sequence, applies fn and writes
// the result back. If fn or the write fails, nothing is persisted and the
// in-memory view is untouched. This is the primitive every mutation in the
// package is built on.
func (c *Collection[T]) Mutate(fn func(items []T) ([]T, error)) error {
	return c.store.withKeyLock(c.key, func() error {
		items, err := c.loadLocked()
		if err != nil {
			return err
		}
		next, err := fn(items)
		if err != nil {
			return err
		}
		return c.persistLocked(next)
	})
}

// All reloads the collection from storage and returns a copy of the full
// sequence.
func (c *Collection[T]) All() ([]T, error) {
	var out []T
	err := c.store.withKeyLock(c.key, func() error {
		items, err := c.loadLocked()
		if err != nil {
			return err
		}
		c.items = items
		c.loaded = true
		out = append([]T(nil), items...)
		return nil
	})
	return out, err
}

// View returns the in-memory sequence, loading it on first use. Unlike All it
// does not hit storage once loaded; mutations keep it in sync.
func (c *Collection[T]) View() ([]T, error) {
	var out []T
	err := c.store.withKeyLock(c.key, func() error {
		if !c.loaded {
			items, err := c.loadLocked()
			if err != nil {
				return err
			}
			c.items = items
			c.loaded = true
		}
		out = append([]T(nil), c.items...)
		return nil
	})
	return out, err
}

// Filter returns the entries of the full persisted sequence matching pred.
// The per-owner views in this package are always derived this way, never
// maintained incrementally.
func (c *Collection[T]) Filter(pred func(T) bool) ([]T, error) {
	items, err := c.All()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Append adds item to the end of the persisted sequence.
func (c *Collection[T]) Append(item T) error {
	return c.Mutate(func(items []T) ([]T, error) {
		return append(items, item), nil
	})
}

// Update locates the single entry matching match in the full persisted
// sequence, replaces it with apply(entry) and writes the sequence back.
// Returns ErrNotFound if nothing matches; callers that treat a missing id as
// success would otherwise silently drop the caller's changes.
func (c *Collection[T]) Update(match func(T) bool, apply func(T) T) error {
	found := false
	err := c.Mutate(func(items []T) ([]T, error) {
		for i, it := range items {
			if match(it) {
				items[i] = apply(it)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("update %q: %w", c.key, ErrNotFound)
		}
		return items, nil
	})
	return err
}

// Remove filters out every entry matching match and persists the rest.
// Removing something that is not there is a no-op, not an error.
func (c *Collection[T]) Remove(match func(T) bool) error {
	return c.Mutate(func(items []T) ([]T, error) {
		kept := items[:0]
		for _, it := range items {
			if !match(it) {
				kept = append(kept, it)
			}
		}
		return kept, nil
	})
}

// Replace overwrites the whole persisted sequence with items.
func (c *Collection[T]) Replace(items []T) error {
	return c.Mutate(func([]T) ([]T, error) {
		if items == nil {
			items = []T{}
		}
		return items, nil
	})
}
