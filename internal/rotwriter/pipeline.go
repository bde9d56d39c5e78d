// Package rotwriter implements the rotating partitioned columnar writer
// state machine: the event loop, the typed and generic builders, and the
// post-write handler snapshot (spec.md §4.6-§4.8).
package rotwriter

import (
	"context"
	"iter"
	"os"

	"github.com/tnt-columnar/rotwriter/internal/columnar"
	"github.com/tnt-columnar/rotwriter/internal/columnar/registry"
	"github.com/tnt-columnar/rotwriter/internal/columnar/writerfactory"
	"github.com/tnt-columnar/rotwriter/internal/partition"
	"github.com/tnt-columnar/rotwriter/internal/record"
	"github.com/tnt-columnar/rotwriter/internal/rwerrors"
	"github.com/tnt-columnar/rotwriter/internal/schema"
)

// recordTransform maps one upstream record to a lazy sequence of generic,
// already-encoded records (preWriteTransformation composed with the
// encoder). A yielded error stops the sequence immediately (spec.md §4.8).
type recordTransform[T any] func(source T) iter.Seq2[record.Record, error]

// Pipeline is the built, runnable state machine produced by a builder
// (spec.md §4.8 "produces a pipe over the underlying stream abstraction").
type Pipeline[T any] struct {
	cfg               Config
	schemaDef         *schema.Def
	transform         recordTransform[T]
	newInternalWriter columnar.NewInternalWriterFunc
	handler           PostWriteHandler[T]
	fileExt           string
}

// Run drains upstream, writing every record to its partition file, and
// re-emits each source record via onEmit after its write items have been
// handed to their partition writers (the "pipe" passthrough of spec.md
// §4.8); a writer may still buffer them until it flushes or is disposed. Run blocks until upstream is
// exhausted, the context is cancelled, or an error terminates the stream.
// On every return path the writer registry is fully disposed — no file
// handle leaks, even on mid-stream failure (spec.md §7).
func (p *Pipeline[T]) Run(ctx context.Context, upstream iter.Seq[T], onEmit func(T) error) error {
	if err := os.MkdirAll(p.cfg.BasePath, os.ModePerm); err != nil {
		return rwerrors.NewIoError(err)
	}

	queue := newEventQueue[T]()
	reg := registry.New()

	factory := writerfactory.New(
		p.newInternalWriter,
		p.schemaDef,
		p.cfg.Options,
		p.cfg.MaxDuration,
		p.fileExt,
		func(partitionPath string) {
			queue.Push(rotateEvent{partitionPath: partitionPath})
		},
	)

	cancelWatchDone := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			queue.Push(cancelEvent{err: ctx.Err()})
		case <-cancelWatchDone:
		}
	}()

	producerErrCh := make(chan error, 1)

	go p.runProducer(ctx, upstream, queue, producerErrCh)

	l := &loop[T]{
		cfg:     p.cfg,
		queue:   queue,
		reg:     reg,
		factory: factory,
		onEmit:  onEmit,
		handler: p.handler,
	}

	loopErr := l.run()

	close(cancelWatchDone)

	disposeErr := reg.DisposeAll()

	producerErr := <-producerErrCh

	if loopErr != nil {
		return loopErr
	}

	if producerErr != nil {
		return producerErr
	}

	return disposeErr
}

// runProducer pulls from upstream, applies the transform to each record, and
// pushes a dataEvent per source record; it pushes stopEvent last, always,
// even on error, so the loop is guaranteed to terminate.
func (p *Pipeline[T]) runProducer(ctx context.Context, upstream iter.Seq[T], queue *eventQueue[T], errCh chan<- error) {
	var resultErr error

	for source := range upstream {
		if err := ctx.Err(); err != nil {
			resultErr = err
			break
		}

		items := make([]writeItem, 0)

		failed := false

		for rec, err := range p.transform(source) {
			if err != nil {
				resultErr = rwerrors.NewEncodeError(err)
				failed = true

				break
			}

			dir, stripped, partErr := partition.Partition(p.cfg.BasePath, rec, p.cfg.PartitionBy)
			if partErr != nil {
				resultErr = partErr
				failed = true

				break
			}

			items = append(items, writeItem{partitionPath: dir, rec: stripped})
		}

		if failed {
			break
		}

		queue.Push(dataEvent[T]{items: items, source: source})
	}

	queue.Push(stopEvent{})
	errCh <- resultErr
}
