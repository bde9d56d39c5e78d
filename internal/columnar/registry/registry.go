// Package registry implements the concurrency-safe mapping from partition
// directory to active writer (spec.md §4.4), grounded on the teacher's
// ModelWriter.writerByPartition (a mutex-guarded map) and its fan-out
// Teardown.
package registry

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/tnt-columnar/rotwriter/internal/columnar/writerfactory"
)

// Registry is a concurrency-safe mapping from partition directory path to
// its active ManagedWriter. The registry never holds a disposed writer
// (spec.md §3 invariant).
type Registry struct {
	mu      sync.Mutex
	writers map[string]*writerfactory.ManagedWriter
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{writers: make(map[string]*writerfactory.ManagedWriter)}
}

// GetOrCreate returns the writer already registered for path, or calls
// create and inserts it. If two callers race to create for the same path,
// the loser disposes its own writer and returns the winner's (spec.md
// §4.4).
func (r *Registry) GetOrCreate(
	path string,
	create func() (*writerfactory.ManagedWriter, error),
) (*writerfactory.ManagedWriter, error) {
	r.mu.Lock()
	if w, ok := r.writers[path]; ok {
		r.mu.Unlock()
		return w, nil
	}
	r.mu.Unlock()

	// Creation (which may block on file I/O) happens outside the lock so one
	// slow creator cannot stall lookups for unrelated partitions.
	created, err := create()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.writers[path]; ok {
		if disposeErr := created.Dispose(); disposeErr != nil {
			return existing, disposeErr
		}

		return existing, nil
	}

	r.writers[path] = created

	return created, nil
}

// Remove atomically removes and returns the writer for path, if any. The
// caller is responsible for disposing it.
func (r *Registry) Remove(path string) (*writerfactory.ManagedWriter, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.writers[path]
	if ok {
		delete(r.writers, path)
	}

	return w, ok
}

// DisposeAll drains and disposes every writer, clearing the map. It is safe
// to call more than once (a second call sees an empty map and is a no-op),
// which makes it safe to run unconditionally from a deferred finalizer on
// top of an explicit call on the clean-exit path.
func (r *Registry) DisposeAll() error {
	r.mu.Lock()
	writers := r.writers
	r.writers = make(map[string]*writerfactory.ManagedWriter)
	r.mu.Unlock()

	var errs []string

	for _, w := range writers {
		if err := w.Dispose(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Len reports the number of live writers, used by tests asserting the
// registry never holds a disposed writer.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.writers)
}
