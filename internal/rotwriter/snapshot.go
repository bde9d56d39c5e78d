package rotwriter

import "sync"

// ChunkSnapshot is the immutable-to-the-caller view a PostWriteHandler
// receives after each processed segment (spec.md §4.7): the source records
// just written, the current per-partition write counts, and a Flush
// hook the handler may call any number of times. Partitions passed to Flush
// are aggregated and rotated once, after the handler returns.
type ChunkSnapshot[T any] struct {
	// Processed is the batch of source records whose write items were just
	// written and are now visible in PartitionCounts.
	Processed []T
	// PartitionCounts maps partition directory to its writer's current
	// record count, for every partition touched by Processed.
	PartitionCounts map[string]uint64

	mu      sync.Mutex
	flushed map[string]struct{}
}

func newChunkSnapshot[T any](processed []T, counts map[string]uint64) *ChunkSnapshot[T] {
	return &ChunkSnapshot[T]{
		Processed:       processed,
		PartitionCounts: counts,
		flushed:         make(map[string]struct{}),
	}
}

// Flush requests that path be rotated once the handler returns.
func (s *ChunkSnapshot[T]) Flush(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushed[path] = struct{}{}
}

func (s *ChunkSnapshot[T]) flushedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.flushed))
	for p := range s.flushed {
		out = append(out, p)
	}

	return out
}

// PostWriteHandler is invoked sequentially with the loop after each
// processed segment; no new data is consumed while it executes (spec.md
// §4.7).
type PostWriteHandler[T any] func(snap *ChunkSnapshot[T]) error
