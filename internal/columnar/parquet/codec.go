package parquet

import (
	"github.com/apache/arrow-go/v18/parquet/compress"

	"github.com/tnt-columnar/rotwriter/internal/columnar"
)

// codec implements columnar.CompressionCodec over one of arrow-go's parquet
// compression codecs, pairing it with the filename extension convention the
// on-disk layout uses (spec.md §6): the extension is empty for
// uncompressed output.
type codec struct {
	name      string
	extension string
	compress  compress.Compression
}

func (c codec) Name() string      { return c.name }
func (c codec) Extension() string { return c.extension }

var (
	Uncompressed = codec{name: "UNCOMPRESSED", extension: "", compress: compress.Codecs.Uncompressed}
	Snappy       = codec{name: "SNAPPY", extension: ".snappy", compress: compress.Codecs.Snappy}
	Gzip         = codec{name: "GZIP", extension: ".gz", compress: compress.Codecs.Gzip}
	Lz4          = codec{name: "LZ4", extension: ".lz4", compress: compress.Codecs.Lz4}
	Lz4Raw       = codec{name: "LZ4RAW", extension: ".lz4raw", compress: compress.Codecs.Lz4Raw}
	Zstd         = codec{name: "ZSTD", extension: ".zstd", compress: compress.Codecs.Zstd}
	Brotli       = codec{name: "BROTLI", extension: ".br", compress: compress.Codecs.Brotli}
)

// codecsByName mirrors the teacher's codecsByName table
// (writer/parquet/parquet.go), extended with the Extension each codec
// contributes to the generated file name.
var codecsByName = map[string]codec{
	Uncompressed.name: Uncompressed,
	Snappy.name:       Snappy,
	Gzip.name:         Gzip,
	Lz4.name:          Lz4,
	Lz4Raw.name:       Lz4Raw,
	Zstd.name:         Zstd,
	Brotli.name:       Brotli,
}

// CodecByName resolves a compression codec by its configured name, falling
// back to Uncompressed for an unrecognized or empty name.
func CodecByName(name string) columnar.CompressionCodec {
	if c, ok := codecsByName[name]; ok {
		return c
	}

	return Uncompressed
}
