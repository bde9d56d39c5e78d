package rotwriter

import "github.com/tnt-columnar/rotwriter/internal/record"

// writeItem is one generic record, already encoded and partitioned, ready
// for dispatch to the writer registry.
type writeItem struct {
	partitionPath string
	rec           record.Record
}

// event is the sealed union the event loop folds over (spec.md §4.6): a
// dataEvent, a rotateEvent, or a stopEvent.
type event[T any] interface {
	isEvent()
}

// dataEvent carries one upstream record, after transformation, encoding, and
// partitioning.
type dataEvent[T any] struct {
	items  []writeItem
	source T
}

func (dataEvent[T]) isEvent() {}

// rotateEvent requests disposal of the writer at partitionPath, either
// timer-driven or handler-driven (spec.md §4.6). Per the Open Question in
// spec.md §9, this always carries the writer's full partition path, never
// the unpartitioned base path.
type rotateEvent struct {
	partitionPath string
}

func (rotateEvent) isEvent() {}

// stopEvent marks upstream exhaustion: flush remaining work and terminate.
type stopEvent struct{}

func (stopEvent) isEvent() {}

// cancelEvent is injected when the pipeline's context is cancelled, so that
// a blocked queue pop observes cancellation the same way it observes Stop.
type cancelEvent struct {
	err error
}

func (cancelEvent) isEvent() {}
