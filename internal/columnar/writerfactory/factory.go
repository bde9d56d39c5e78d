// Package writerfactory wraps the external columnar writer, assigns unique
// file names, and schedules the per-file rotation timer (spec.md §4.3).
package writerfactory

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tnt-columnar/rotwriter/internal/columnar"
	"github.com/tnt-columnar/rotwriter/internal/record"
	"github.com/tnt-columnar/rotwriter/internal/rwerrors"
	"github.com/tnt-columnar/rotwriter/internal/schema"
)

// OnTimerFire is invoked, once, after maxDuration elapses for a writer that
// has not already been disposed. It is expected to enqueue a RotateEvent for
// partitionPath onto the pipeline's event queue.
type OnTimerFire func(partitionPath string)

// Factory creates ManagedWriter instances bound to a partition directory.
type Factory struct {
	newInternalWriter columnar.NewInternalWriterFunc
	schemaDef         *schema.Def
	options           columnar.Options
	maxDuration       time.Duration
	onTimerFire       OnTimerFire
	fileExt           string
}

// New builds a Factory. fileExt is the file extension appended after the
// UUID component (e.g. ".parquet"); codec extension, if any, is expected to
// already be folded into it by the caller per spec.md §6.
func New(
	newInternalWriter columnar.NewInternalWriterFunc,
	schemaDef *schema.Def,
	options columnar.Options,
	maxDuration time.Duration,
	fileExt string,
	onTimerFire OnTimerFire,
) *Factory {
	return &Factory{
		newInternalWriter: newInternalWriter,
		schemaDef:         schemaDef,
		options:           options,
		maxDuration:       maxDuration,
		onTimerFire:       onTimerFire,
		fileExt:           fileExt,
	}
}

// ManagedWriter is a single partition's writer, owned for its entire
// lifetime by exactly one event-loop goroutine (spec.md §3 invariants). Its
// count field therefore needs no locking: only the owner ever touches it.
type ManagedWriter struct {
	PartitionPath string

	internal columnar.InternalWriter
	timer    *time.Timer
	fileName string
	count    uint64
}

// FileName returns the generated file's base name, for diagnostics.
func (w *ManagedWriter) FileName() string {
	return w.fileName
}

// Create opens a new writer for partitionPath. Creation is uncancellable:
// once the file handle is open, the rotation timer is guaranteed scheduled,
// or the handle is closed and the error returned — there is no path in which
// a writer exists without its timer, or a timer without a writer (spec.md
// §4.3, §4.6 "uncancellable regions").
func (f *Factory) Create(partitionPath string) (*ManagedWriter, error) {
	fileName := uuid.New().String() + f.fileExt
	fullDir := partitionPath

	internal, err := f.newInternalWriter(filepath.Join(fullDir, fileName), f.schemaDef, f.options)
	if err != nil {
		return nil, rwerrors.NewIoError(err)
	}

	w := &ManagedWriter{
		PartitionPath: partitionPath,
		internal:      internal,
		fileName:      fileName,
	}

	w.timer = time.AfterFunc(f.maxDuration, func() {
		f.onTimerFire(partitionPath)
	})

	return w, nil
}

// Write persists one record and advances the writer's record count.
func (w *ManagedWriter) Write(rec record.Record) error {
	if err := w.internal.Write(rec); err != nil {
		return rwerrors.NewIoError(err)
	}

	w.count++

	return nil
}

// Count returns the number of records written through this writer so far.
func (w *ManagedWriter) Count() uint64 {
	return w.count
}

// Dispose is an uncancellable region: it cancels the rotation timer first,
// then closes the underlying file handle, in that order, regardless of
// whether the writer is being disposed due to maxCount, a rotation timer, a
// handler-requested flush, or pipeline termination.
func (w *ManagedWriter) Dispose() error {
	w.timer.Stop()

	if err := w.internal.Close(); err != nil {
		return rwerrors.NewIoError(err)
	}

	return nil
}
