// Package columnar defines the contracts the rotating writer core uses to
// talk to the external columnar encoder collaborator (spec.md §6), plus the
// writer factory and registry that manage the lifecycle of one writer per
// partition.
package columnar

import (
	"github.com/tnt-columnar/rotwriter/internal/record"
	"github.com/tnt-columnar/rotwriter/internal/schema"
)

// CompressionCodec is the one opaque field of the options bag the core
// inspects directly, to derive the on-disk file extension (spec.md §6).
type CompressionCodec interface {
	Name() string
	Extension() string
}

// Options is passed through to the encoder and to writer creation, opaque
// to the core except for CompressionCodecName.
type Options struct {
	CompressionCodecName CompressionCodec
	Extra                map[string]any
}

// Encoder encodes one typed write item W into the generic record
// representation the writer registry persists.
type Encoder[W any] interface {
	Encode(item W, opts Options) (record.Record, error)
}

// SchemaResolver produces the schema for W with the configured partition
// paths already removed.
type SchemaResolver[W any] interface {
	Resolve(partitionBy []record.ColumnPath) (*schema.Def, error)
}

// InternalWriter is the minimal surface the writer factory needs from the
// underlying columnar library: accept one generic record per call, close
// cleanly on demand (spec.md §6).
type InternalWriter interface {
	Write(rec record.Record) error
	Close() error
}

// NewInternalWriterFunc opens an InternalWriter for one partition file. path
// is the full file path inside the partition directory, which is not created
// before the call; schemaDef is the schema with partition fields removed.
type NewInternalWriterFunc func(path string, schemaDef *schema.Def, opts Options) (InternalWriter, error)
