// Package parquet is the concrete, arrow-go-backed implementation of the
// "external columnar encoder" collaborator described by spec.md §6: it
// materializes a SchemaDef into an arrow.Schema, opens a pqarrow.FileWriter,
// and appends one generic record.Record per Write call. Grounded on the
// teacher's internal/generator/output/general/writer/parquet/parquet.go.
package parquet

import (
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/pkg/errors"

	"github.com/tnt-columnar/rotwriter/internal/columnar"
	"github.com/tnt-columnar/rotwriter/internal/record"
	"github.com/tnt-columnar/rotwriter/internal/schema"
)

const flushInterval = 5 * time.Second

// Verify interface compliance in compile time.
var _ columnar.InternalWriter = (*Writer)(nil)

// Writer implements columnar.InternalWriter over a single parquet file.
type Writer struct {
	schemaDef *schema.Def

	fileWriter    *pqarrow.FileWriter
	recordBuilder *array.RecordBuilder

	flushTicker *time.Ticker
	stopCh      chan struct{}
	flushWg     sync.WaitGroup

	mu         sync.Mutex
	errCh      chan error
	pendingRow uint64
}

// NewWriterFunc returns a columnar.NewInternalWriterFunc bound to fs, which
// the writer factory calls once per partition file (spec.md §4.3, §6).
func NewWriterFunc(fs FileSystem) columnar.NewInternalWriterFunc {
	return func(path string, schemaDef *schema.Def, opts columnar.Options) (columnar.InternalWriter, error) {
		return newWriter(fs, path, schemaDef, opts)
	}
}

func newWriter(fs FileSystem, path string, schemaDef *schema.Def, opts columnar.Options) (*Writer, error) {
	arrowSchema, err := toArrowSchema(schemaDef)
	if err != nil {
		return nil, errors.WithMessage(err, "materialize schema")
	}

	codecName := "UNCOMPRESSED"
	if opts.CompressionCodecName != nil {
		codecName = opts.CompressionCodecName.Name()
	}

	c, ok := codecsByName[codecName]
	if !ok {
		c = Uncompressed
	}

	writerProperties := parquet.NewWriterProperties(
		parquet.WithCompression(c.compress),
		parquet.WithDictionaryDefault(false),
	)

	fileWriter, err := fs.NewFileWriter(path)
	if err != nil {
		return nil, err
	}

	pWriter, err := pqarrow.NewFileWriter(arrowSchema, fileWriter, writerProperties, pqarrow.DefaultWriterProps())
	if err != nil {
		_ = fileWriter.Close()
		return nil, errors.New(err.Error())
	}

	w := &Writer{
		schemaDef:     schemaDef,
		fileWriter:    pWriter,
		recordBuilder: array.NewRecordBuilder(memory.DefaultAllocator, arrowSchema),
		flushTicker:   time.NewTicker(flushInterval),
		stopCh:        make(chan struct{}),
		errCh:         make(chan error, 1),
	}

	w.flushWg.Add(1)

	go w.flusher()

	return w, nil
}

func (w *Writer) flusher() {
	defer w.flushWg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		case <-w.flushTicker.C:
			if err := w.flush(); err != nil {
				select {
				case w.errCh <- err:
				default:
				}

				return
			}
		}
	}
}

func (w *Writer) flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pendingRow == 0 {
		return nil
	}

	rec := w.recordBuilder.NewRecord()
	defer rec.Release()

	if err := w.fileWriter.WriteBuffered(rec); err != nil {
		return errors.New(err.Error())
	}

	w.pendingRow = 0

	return nil
}

// Write appends one generic record's fields, in the schema's field order,
// to the open file.
func (w *Writer) Write(rec record.Record) error {
	select {
	case err := <-w.errCh:
		return err
	default:
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	fields := w.schemaDef.Fields()
	builders := w.recordBuilder.Fields()

	for i, f := range fields {
		v, ok := rec.Get(f.Name)
		if !ok {
			v = record.Null{}
		}

		if err := appendValue(builders[i], f.Def, v); err != nil {
			return errors.WithMessagef(err, "field %q", f.Name)
		}
	}

	w.pendingRow++

	return nil
}

// Close flushes any buffered rows, stops the flush ticker, and closes the
// underlying file.
func (w *Writer) Close() error {
	close(w.stopCh)
	w.flushTicker.Stop()
	w.flushWg.Wait()

	if err := w.flush(); err != nil {
		return err
	}

	if err := w.fileWriter.Close(); err != nil {
		return errors.New(err.Error())
	}

	select {
	case err := <-w.errCh:
		return err
	default:
		return nil
	}
}
