package rotwriter

import (
	"iter"
	"time"

	"github.com/pkg/errors"

	"github.com/tnt-columnar/rotwriter/internal/columnar"
	"github.com/tnt-columnar/rotwriter/internal/record"
	"github.com/tnt-columnar/rotwriter/internal/schema"
)

// TypedBuilder configures a pipeline whose upstream records are of type T,
// mapped through preWriteTransformation to write items of type W, which an
// Encoder[W] turns into generic records (spec.md §4.8 "Typed").
type TypedBuilder[T, W any] struct {
	cfg       Config
	transform func(T) iter.Seq2[W, error]
	encoder   columnar.Encoder[W]
	resolver  columnar.SchemaResolver[W]
	handler   PostWriteHandler[T]
}

// NewTypedBuilder starts a TypedBuilder bound to encoder and resolver. Until
// PreWriteTransformation is set, T and W must be the same type and each
// source record becomes exactly one write item.
func NewTypedBuilder[T, W any](
	basePath string,
	encoder columnar.Encoder[W],
	resolver columnar.SchemaResolver[W],
) *TypedBuilder[T, W] {
	return &TypedBuilder[T, W]{
		cfg:      defaultConfig(basePath),
		encoder:  encoder,
		resolver: resolver,
	}
}

// All setters below are pure: they return a new builder, leaving the
// receiver untouched (spec.md §4.8).

func (b *TypedBuilder[T, W]) MaxCount(n uint64) *TypedBuilder[T, W] {
	c := *b
	c.cfg.MaxCount = n

	return &c
}

func (b *TypedBuilder[T, W]) MaxDuration(d time.Duration) *TypedBuilder[T, W] {
	c := *b
	c.cfg.MaxDuration = d

	return &c
}

func (b *TypedBuilder[T, W]) ChunkSize(n int) *TypedBuilder[T, W] {
	c := *b
	c.cfg.ChunkSize = n

	return &c
}

func (b *TypedBuilder[T, W]) PartitionBy(paths ...record.ColumnPath) *TypedBuilder[T, W] {
	c := *b
	c.cfg.PartitionBy = append([]record.ColumnPath(nil), paths...)

	return &c
}

func (b *TypedBuilder[T, W]) Options(opts columnar.Options) *TypedBuilder[T, W] {
	c := *b
	c.cfg.Options = opts

	return &c
}

// PreWriteTransformation sets the mapping from one upstream record to zero
// or more write items, as a lazy, possibly-failing sequence.
func (b *TypedBuilder[T, W]) PreWriteTransformation(fn func(T) iter.Seq2[W, error]) *TypedBuilder[T, W] {
	c := *b
	c.transform = fn

	return &c
}

// PostWriteHandlerFunc sets the handler invoked after each processed
// segment.
func (b *TypedBuilder[T, W]) PostWriteHandlerFunc(fn PostWriteHandler[T]) *TypedBuilder[T, W] {
	c := *b
	c.handler = fn

	return &c
}

// Build resolves the schema once (failing here on error, per spec.md §4.8)
// and returns a runnable Pipeline backed by newInternalWriter.
func (b *TypedBuilder[T, W]) Build(newInternalWriter columnar.NewInternalWriterFunc, fileExt string) (*Pipeline[T], error) {
	schemaDef, err := b.resolver.Resolve(b.cfg.PartitionBy)
	if err != nil {
		return nil, errors.WithMessage(err, "resolve schema")
	}

	transform := b.transform
	if transform == nil {
		transform = func(t T) iter.Seq2[W, error] {
			return func(yield func(W, error) bool) {
				w, ok := any(t).(W)
				if !ok {
					var zero W

					yield(zero, errors.New("default transform requires T and W to be the same type"))

					return
				}

				yield(w, nil)
			}
		}
	}

	return &Pipeline[T]{
		cfg:               b.cfg,
		schemaDef:         schemaDef,
		transform:         composeEncode(transform, b.encoder, b.cfg.Options),
		newInternalWriter: newInternalWriter,
		handler:           b.handler,
		fileExt:           fileExt,
	}, nil
}

// composeEncode folds an Encoder[W] into a transform of W so the pipeline
// core only ever deals in record.Record.
func composeEncode[T, W any](
	transform func(T) iter.Seq2[W, error],
	encoder columnar.Encoder[W],
	opts columnar.Options,
) recordTransform[T] {
	return func(source T) iter.Seq2[record.Record, error] {
		return func(yield func(record.Record, error) bool) {
			for item, err := range transform(source) {
				if err != nil {
					yield(record.Record{}, err)
					return
				}

				rec, encErr := encoder.Encode(item, opts)
				if !yield(rec, encErr) || encErr != nil {
					return
				}
			}
		}
	}
}

// GenericBuilder configures a pipeline that works directly on the generic
// record.Record type, given a pre-resolved schema (spec.md §4.8 "Generic").
type GenericBuilder struct {
	cfg       Config
	schemaDef *schema.Def
	transform func(record.Record) iter.Seq2[record.Record, error]
	handler   PostWriteHandler[record.Record]
}

// NewGenericBuilder starts a GenericBuilder with a pre-resolved schema. The
// default transform yields the input record unchanged.
func NewGenericBuilder(basePath string, schemaDef *schema.Def) *GenericBuilder {
	return &GenericBuilder{
		cfg:       defaultConfig(basePath),
		schemaDef: schemaDef,
	}
}

func (b *GenericBuilder) MaxCount(n uint64) *GenericBuilder {
	c := *b
	c.cfg.MaxCount = n

	return &c
}

func (b *GenericBuilder) MaxDuration(d time.Duration) *GenericBuilder {
	c := *b
	c.cfg.MaxDuration = d

	return &c
}

func (b *GenericBuilder) ChunkSize(n int) *GenericBuilder {
	c := *b
	c.cfg.ChunkSize = n

	return &c
}

func (b *GenericBuilder) PartitionBy(paths ...record.ColumnPath) *GenericBuilder {
	c := *b
	c.cfg.PartitionBy = append([]record.ColumnPath(nil), paths...)

	return &c
}

func (b *GenericBuilder) Options(opts columnar.Options) *GenericBuilder {
	c := *b
	c.cfg.Options = opts

	return &c
}

// PreWriteTransformation sets the mapping from one upstream record to zero
// or more write items, as a lazy, possibly-failing sequence of records.
func (b *GenericBuilder) PreWriteTransformation(fn func(record.Record) iter.Seq2[record.Record, error]) *GenericBuilder {
	c := *b
	c.transform = fn

	return &c
}

// PostWriteHandlerFunc sets the handler invoked after each processed
// segment.
func (b *GenericBuilder) PostWriteHandlerFunc(fn PostWriteHandler[record.Record]) *GenericBuilder {
	c := *b
	c.handler = fn

	return &c
}

// Build returns a runnable Pipeline backed by newInternalWriter. Unlike the
// typed builder, there is no schema resolver to call: the schema was
// supplied at construction time.
func (b *GenericBuilder) Build(newInternalWriter columnar.NewInternalWriterFunc, fileExt string) (*Pipeline[record.Record], error) {
	transform := b.transform
	if transform == nil {
		transform = func(r record.Record) iter.Seq2[record.Record, error] {
			return func(yield func(record.Record, error) bool) {
				yield(r, nil)
			}
		}
	}

	return &Pipeline[record.Record]{
		cfg:               b.cfg,
		schemaDef:         b.schemaDef,
		transform:         transform,
		newInternalWriter: newInternalWriter,
		handler:           b.handler,
		fileExt:           fileExt,
	}, nil
}
