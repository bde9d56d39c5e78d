package rotwriter

import (
	"github.com/tnt-columnar/rotwriter/internal/columnar/registry"
	"github.com/tnt-columnar/rotwriter/internal/columnar/writerfactory"
	"github.com/tnt-columnar/rotwriter/internal/rwerrors"
)

// segment is one write-then-emit unit within a chunk (spec.md §4.6). A
// chunk containing no Rotate events is a single segment; each Rotate event
// encountered mid-chunk closes the current segment (so its data is written
// and emitted before that rotation's dispose) and opens a new one.
type segment[T any] struct {
	items       []writeItem
	source      []T
	rotateAfter string
	hasRotate   bool
}

// loop is the event-loop state machine (spec.md §4.6), the core of the
// rotating writer.
type loop[T any] struct {
	cfg     Config
	queue   *eventQueue[T]
	reg     *registry.Registry
	factory *writerfactory.Factory
	onEmit  func(T) error
	handler PostWriteHandler[T]
}

// run repeats the pull cycle until a terminal event (Stop or cancellation)
// is observed, then finalizes.
func (l *loop[T]) run() error {
	for {
		batch := l.queue.PopUpTo(l.cfg.ChunkSize)

		segments, terminal, cancelErr := foldChunk[T](batch)

		for _, seg := range segments {
			if err := l.processSegment(seg); err != nil {
				return err
			}
		}

		if cancelErr != nil {
			return cancelErr
		}

		if terminal {
			return nil
		}
	}
}

// foldChunk splits one pulled batch of events into ordered segments
// (spec.md §4.6 step 2). Data events accumulate into the current segment;
// a Rotate event closes it. Stop (or cancellation) marks the fold terminal;
// any events after it in the same batch are ignored — in practice this
// cannot happen, since the producer always pushes Stop last.
func foldChunk[T any](batch []event[T]) (segments []segment[T], terminal bool, cancelErr error) {
	cur := segment[T]{}

	for _, raw := range batch {
		switch e := raw.(type) {
		case dataEvent[T]:
			cur.items = append(cur.items, e.items...)
			cur.source = append(cur.source, e.source)
		case rotateEvent:
			cur.rotateAfter = e.partitionPath
			cur.hasRotate = true
			segments = append(segments, cur)
			cur = segment[T]{}
		case stopEvent:
			terminal = true
		case cancelEvent:
			terminal = true
			cancelErr = e.err
		}

		if terminal {
			break
		}
	}

	segments = append(segments, cur)

	return segments, terminal, cancelErr
}

// processSegment writes a segment's items one at a time in order, emits its
// source records downstream, runs the post-write handler, then disposes
// whichever partitions this segment's Rotate (if any) and the handler's own
// Flush calls named, each once, strictly after the write and emit above
// (spec.md §4.6 ordering guarantees).
func (l *loop[T]) processSegment(seg segment[T]) error {
	touched, err := l.writeItems(seg.items)
	if err != nil {
		return err
	}

	for _, source := range seg.source {
		if err := l.onEmit(source); err != nil {
			return err
		}
	}

	toRotate := make(map[string]struct{})
	if seg.hasRotate {
		toRotate[seg.rotateAfter] = struct{}{}
	}

	if l.handler != nil {
		snap := newChunkSnapshot(seg.source, touched)

		if err := l.handler(snap); err != nil {
			return rwerrors.NewUserHandlerError(err)
		}

		for _, p := range snap.flushedPaths() {
			toRotate[p] = struct{}{}
		}
	}

	for p := range toRotate {
		if err := l.disposePartition(p); err != nil {
			return err
		}
	}

	return nil
}

// writeItems dispatches each item to its partition's writer via
// get-or-create, then checks the implicit maxCount rotation: a writer whose
// count reaches maxCount is removed and disposed immediately, synchronously
// within this call, so the record that crosses the threshold is guaranteed
// to be the last one in its file (spec.md §8 invariant 3) and the next
// record targeting that partition creates a fresh writer.
func (l *loop[T]) writeItems(items []writeItem) (map[string]uint64, error) {
	touched := make(map[string]uint64, len(items))

	for _, item := range items {
		w, err := l.reg.GetOrCreate(item.partitionPath, func() (*writerfactory.ManagedWriter, error) {
			return l.factory.Create(item.partitionPath)
		})
		if err != nil {
			return nil, err
		}

		if err := w.Write(item.rec); err != nil {
			return nil, err
		}

		touched[item.partitionPath] = w.Count()

		if w.Count() >= l.cfg.MaxCount {
			if _, ok := l.reg.Remove(item.partitionPath); ok {
				if err := w.Dispose(); err != nil {
					return nil, err
				}
			}
		}
	}

	return touched, nil
}

// disposePartition removes and disposes the writer at path, if one is still
// registered. A stale rotation request (e.g. a timer that fired for a
// partition already rotated by maxCount) finds nothing to do, which is not
// an error (spec.md §5 "a stale RotateEvent merely finds no writer to
// close").
func (l *loop[T]) disposePartition(path string) error {
	w, ok := l.reg.Remove(path)
	if !ok {
		return nil
	}

	return w.Dispose()
}
