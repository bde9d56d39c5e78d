package writerfactory

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tnt-columnar/rotwriter/internal/columnar"
	"github.com/tnt-columnar/rotwriter/internal/record"
	"github.com/tnt-columnar/rotwriter/internal/schema"
)

type fakeInternal struct {
	writes int
	closed bool
}

func (f *fakeInternal) Write(record.Record) error {
	f.writes++
	return nil
}

func (f *fakeInternal) Close() error {
	f.closed = true
	return nil
}

func newTestFactory(t *testing.T, maxDuration time.Duration, onTimerFire OnTimerFire) (*Factory, *fakeInternal) {
	t.Helper()

	fi := &fakeInternal{}

	def := schema.Group(nil, true)

	f := New(
		func(string, *schema.Def, columnar.Options) (columnar.InternalWriter, error) {
			return fi, nil
		},
		&def,
		columnar.Options{},
		maxDuration,
		".bin",
		onTimerFire,
	)

	return f, fi
}

func TestFactoryCreateWriteDispose(t *testing.T) {
	f, fi := newTestFactory(t, time.Hour, func(string) {})

	w, err := f.Create("partA")
	require.NoError(t, err)
	require.Equal(t, "partA", w.PartitionPath)
	require.NotEmpty(t, w.FileName())

	require.NoError(t, w.Write(record.New()))
	require.NoError(t, w.Write(record.New()))
	require.Equal(t, uint64(2), w.Count())
	require.Equal(t, 2, fi.writes)

	require.NoError(t, w.Dispose())
	require.True(t, fi.closed)
}

func TestFactoryTimerFiresOnTimerFire(t *testing.T) {
	var fired atomic.Bool

	f, _ := newTestFactory(t, 10*time.Millisecond, func(path string) {
		require.Equal(t, "partB", path)
		fired.Store(true)
	})

	w, err := f.Create("partB")
	require.NoError(t, err)

	require.Eventually(t, fired.Load, time.Second, time.Millisecond)

	require.NoError(t, w.Dispose())
}

func TestFactoryDisposeCancelsTimerBeforeFire(t *testing.T) {
	var fired atomic.Bool

	f, _ := newTestFactory(t, 30*time.Millisecond, func(string) {
		fired.Store(true)
	})

	w, err := f.Create("partC")
	require.NoError(t, err)

	require.NoError(t, w.Dispose())

	time.Sleep(60 * time.Millisecond)

	require.False(t, fired.Load(), "timer must not fire after its writer was disposed")
}
