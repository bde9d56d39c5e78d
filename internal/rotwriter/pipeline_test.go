package rotwriter

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tnt-columnar/rotwriter/internal/columnar"
	"github.com/tnt-columnar/rotwriter/internal/record"
	"github.com/tnt-columnar/rotwriter/internal/schema"
)

// fakeFile captures every record written to one partition file, in order,
// standing in for a real columnar backend in tests of the engine's rotation
// and ordering behavior.
type fakeFile struct {
	path string
	recs []record.Record
}

type fakeRecorder struct {
	mu    sync.Mutex
	files []*fakeFile
}

func (r *fakeRecorder) newWriterFunc() columnar.NewInternalWriterFunc {
	return func(path string, _ *schema.Def, _ columnar.Options) (columnar.InternalWriter, error) {
		r.mu.Lock()
		f := &fakeFile{path: path}
		r.files = append(r.files, f)
		r.mu.Unlock()

		return &fakeInternalWriter{file: f}, nil
	}
}

type fakeInternalWriter struct {
	file *fakeFile
}

func (w *fakeInternalWriter) Write(rec record.Record) error {
	w.file.recs = append(w.file.recs, rec)
	return nil
}

func (w *fakeInternalWriter) Close() error { return nil }

func idSchema() schema.Def {
	return schema.Group([]schema.NamedDef{
		schema.Primitive(schema.Int32, true).Materialize("id"),
	}, true)
}

func seqFrom(recs []record.Record) iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		for _, r := range recs {
			if !yield(r) {
				return
			}
		}
	}
}

func seqFromTrickle(recs []record.Record, delay time.Duration) iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		for _, r := range recs {
			time.Sleep(delay)

			if !yield(r) {
				return
			}
		}
	}
}

func noopEmit(record.Record) error { return nil }

// TestPipelinePartitionsByColor covers spec.md §8 scenario 1: records
// partitioned by color land in per-value directories, and the stripped
// partition column is absent from the written records.
func TestPipelinePartitionsByColor(t *testing.T) {
	basePath := t.TempDir()

	recs := []record.Record{
		record.New().With("id", record.Int32(1)).With("color", record.Binary("red")),
		record.New().With("id", record.Int32(2)).With("color", record.Binary("red")),
		record.New().With("id", record.Int32(3)).With("color", record.Binary("blue")),
	}

	def := idSchema()

	recorder := &fakeRecorder{}

	pipeline, err := NewGenericBuilder(basePath, &def).
		MaxCount(1000).
		PartitionBy(record.ParseColumnPath("color")).
		Build(recorder.newWriterFunc(), ".bin")
	require.NoError(t, err)

	require.NoError(t, pipeline.Run(context.Background(), seqFrom(recs), noopEmit))

	require.Len(t, recorder.files, 2)

	byPath := make(map[string][]record.Record, 2)
	for _, f := range recorder.files {
		byPath[f.path] = f.recs
	}

	var redCount, blueCount int

	for path, fileRecs := range byPath {
		switch {
		case containsSegment(path, "color=red"):
			redCount = len(fileRecs)
		case containsSegment(path, "color=blue"):
			blueCount = len(fileRecs)
		}

		for _, r := range fileRecs {
			_, hasColor := r.Get("color")
			require.False(t, hasColor, "partition column must be stripped before write")
		}
	}

	require.Equal(t, 2, redCount)
	require.Equal(t, 1, blueCount)
}

// TestPipelineMaxCountRotatesSynchronously covers spec.md §8 scenario 2:
// with no partitioning and maxCount=2, five records split into three files
// of [1,2], [3,4], [5], in input order.
func TestPipelineMaxCountRotatesSynchronously(t *testing.T) {
	basePath := t.TempDir()

	recs := make([]record.Record, 0, 5)
	for i := 1; i <= 5; i++ {
		recs = append(recs, record.New().With("id", record.Int32(i)))
	}

	def := idSchema()
	recorder := &fakeRecorder{}

	pipeline, err := NewGenericBuilder(basePath, &def).
		MaxCount(2).
		Build(recorder.newWriterFunc(), ".bin")
	require.NoError(t, err)

	require.NoError(t, pipeline.Run(context.Background(), seqFrom(recs), noopEmit))

	require.Len(t, recorder.files, 3)

	expected := [][]int32{{1, 2}, {3, 4}, {5}}

	for i, f := range recorder.files {
		require.Len(t, f.recs, len(expected[i]))

		for j, r := range f.recs {
			v, ok := r.Get("id")
			require.True(t, ok)
			require.Equal(t, record.Int32(expected[i][j]), v)
		}
	}
}

// TestPipelineMaxDurationRotatesOnTimer covers spec.md §8 scenario 4: ten
// records trickled slower than maxDuration produce at least two files under
// the single partition.
func TestPipelineMaxDurationRotatesOnTimer(t *testing.T) {
	basePath := t.TempDir()

	recs := make([]record.Record, 0, 10)
	for i := 1; i <= 10; i++ {
		recs = append(recs, record.New().With("id", record.Int32(i)))
	}

	def := idSchema()
	recorder := &fakeRecorder{}

	pipeline, err := NewGenericBuilder(basePath, &def).
		MaxCount(1_000_000).
		MaxDuration(50 * time.Millisecond).
		Build(recorder.newWriterFunc(), ".bin")
	require.NoError(t, err)

	require.NoError(t, pipeline.Run(context.Background(), seqFromTrickle(recs, 20*time.Millisecond), noopEmit))

	require.GreaterOrEqual(t, len(recorder.files), 2)

	var total int
	for _, f := range recorder.files {
		total += len(f.recs)
	}

	require.Equal(t, 10, total)
}

// TestPipelinePostWriteHandlerFlushesEveryChunk covers spec.md §8 scenario 5:
// a handler that flushes on every chunk produces a new file per chunk, even
// though maxCount/maxDuration would not otherwise trigger rotation.
func TestPipelinePostWriteHandlerFlushesEveryChunk(t *testing.T) {
	basePath := t.TempDir()

	recs := []record.Record{
		record.New().With("id", record.Int32(1)),
		record.New().With("id", record.Int32(2)),
		record.New().With("id", record.Int32(3)),
	}

	def := idSchema()
	recorder := &fakeRecorder{}

	pipeline, err := NewGenericBuilder(basePath, &def).
		MaxCount(1_000_000).
		ChunkSize(1).
		PostWriteHandlerFunc(func(snap *ChunkSnapshot[record.Record]) error {
			for path := range snap.PartitionCounts {
				snap.Flush(path)
			}

			return nil
		}).
		Build(recorder.newWriterFunc(), ".bin")
	require.NoError(t, err)

	require.NoError(t, pipeline.Run(context.Background(), seqFrom(recs), noopEmit))

	require.Len(t, recorder.files, 3)

	for _, f := range recorder.files {
		require.Len(t, f.recs, 1)
	}
}

func containsSegment(path, segment string) bool {
	for i := 0; i+len(segment) <= len(path); i++ {
		if path[i:i+len(segment)] == segment {
			return true
		}
	}

	return false
}
