package registry

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tnt-columnar/rotwriter/internal/columnar"
	"github.com/tnt-columnar/rotwriter/internal/columnar/writerfactory"
	"github.com/tnt-columnar/rotwriter/internal/record"
	"github.com/tnt-columnar/rotwriter/internal/schema"
)

type fakeInternal struct {
	closed atomic.Bool
}

func (f *fakeInternal) Write(record.Record) error { return nil }

func (f *fakeInternal) Close() error {
	f.closed.Store(true)
	return nil
}

func newFakeManagedWriter(t *testing.T, path string) (*writerfactory.ManagedWriter, *fakeInternal) {
	t.Helper()

	fi := &fakeInternal{}
	def := schema.Group(nil, true)

	factory := writerfactory.New(
		func(string, *schema.Def, columnar.Options) (columnar.InternalWriter, error) {
			return fi, nil
		},
		&def,
		columnar.Options{},
		0,
		".bin",
		func(string) {},
	)

	w, err := factory.Create(path)
	require.NoError(t, err)

	return w, fi
}

func TestGetOrCreateReturnsSameWriterOnSecondCall(t *testing.T) {
	r := New()

	calls := 0

	create := func() (*writerfactory.ManagedWriter, error) {
		calls++
		w, _ := newFakeManagedWriter(t, "p")

		return w, nil
	}

	w1, err := r.GetOrCreate("p", create)
	require.NoError(t, err)

	w2, err := r.GetOrCreate("p", create)
	require.NoError(t, err)

	require.Same(t, w1, w2)
	require.Equal(t, 1, calls)
}

func TestGetOrCreateDisposesLoserOnRace(t *testing.T) {
	r := New()

	const n = 8

	var wg, creating sync.WaitGroup

	creating.Add(n)

	winners := make([]*writerfactory.ManagedWriter, n)
	internals := make([]*fakeInternal, n)

	for i := range n {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			w, fi := newFakeManagedWriter(t, "race")
			internals[i] = fi

			got, err := r.GetOrCreate("race", func() (*writerfactory.ManagedWriter, error) {
				// Hold every creator here until all n have passed the lookup,
				// so all of them race on the insert.
				creating.Done()
				creating.Wait()

				return w, nil
			})
			require.NoError(t, err)

			winners[i] = got
		}(i)
	}

	wg.Wait()

	first := winners[0]
	for _, w := range winners {
		require.Same(t, first, w)
	}

	require.Equal(t, 1, r.Len())

	var closedCount int

	for _, fi := range internals {
		if fi.closed.Load() {
			closedCount++
		}
	}

	require.Equal(t, n-1, closedCount, "every losing writer must be disposed")
}

func TestRemoveAndDisposeAll(t *testing.T) {
	r := New()

	w1, fi1 := newFakeManagedWriter(t, "a")
	w2, fi2 := newFakeManagedWriter(t, "b")

	_, err := r.GetOrCreate("a", func() (*writerfactory.ManagedWriter, error) { return w1, nil })
	require.NoError(t, err)

	_, err = r.GetOrCreate("b", func() (*writerfactory.ManagedWriter, error) { return w2, nil })
	require.NoError(t, err)

	removed, ok := r.Remove("a")
	require.True(t, ok)
	require.Same(t, w1, removed)
	require.NoError(t, removed.Dispose())
	require.True(t, fi1.closed.Load())

	require.Equal(t, 1, r.Len())

	require.NoError(t, r.DisposeAll())
	require.True(t, fi2.closed.Load())
	require.Equal(t, 0, r.Len())

	// Safe to call twice.
	require.NoError(t, r.DisposeAll())
}
