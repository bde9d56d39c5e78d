package rotwriter

import (
	"time"

	"github.com/tnt-columnar/rotwriter/internal/columnar"
	"github.com/tnt-columnar/rotwriter/internal/record"
)

const (
	// DefaultMaxCount is used when a builder never calls MaxCount.
	DefaultMaxCount uint64 = 1_000_000
	// DefaultMaxDuration is used when a builder never calls MaxDuration.
	DefaultMaxDuration = time.Hour
	// DefaultChunkSize is used when a builder never calls ChunkSize.
	DefaultChunkSize = 64
)

// Config holds the builder configuration enumerated in spec.md §6.
type Config struct {
	BasePath    string
	MaxCount    uint64
	MaxDuration time.Duration
	ChunkSize   int
	PartitionBy []record.ColumnPath
	Options     columnar.Options
}

func defaultConfig(basePath string) Config {
	return Config{
		BasePath:    basePath,
		MaxCount:    DefaultMaxCount,
		MaxDuration: DefaultMaxDuration,
		ChunkSize:   DefaultChunkSize,
	}
}
