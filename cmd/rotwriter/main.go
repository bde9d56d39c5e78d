// Command rotwriter is a demo CLI driving the rotating partitioned columnar
// writer against a newline-delimited JSON input file, writing Parquet
// output partitioned on one or more top-level fields.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tnt-columnar/rotwriter/cmd/rotwriter/config"
	"github.com/tnt-columnar/rotwriter/internal/columnar"
	"github.com/tnt-columnar/rotwriter/internal/columnar/parquet"
	"github.com/tnt-columnar/rotwriter/internal/record"
	"github.com/tnt-columnar/rotwriter/internal/rotwriter"
	"github.com/tnt-columnar/rotwriter/internal/rwlog"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rotwriter",
		Short: "Rotating partitioned columnar writer demo CLI",
	}

	writeCmd := newWriteCommand(&configPath)
	writeCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	cmd.AddCommand(writeCmd)

	return cmd
}

func newWriteCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:                   "write [FLAGS]",
		Short:                 "Writes a newline-delimited JSON input file into rotating partitioned Parquet output",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWrite(cmd.Context(), *configPath)
		},
	}
}

func setupLogging(format string) {
	logger := rwlog.New(os.Stderr, format, slog.LevelInfo)
	slog.SetDefault(logger)
}

func runWrite(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return errors.WithMessage(err, "load config")
	}

	setupLogging(cfg.LogFormat)

	slog.Info("rotwriter started", slog.String("version", version), slog.String("input", cfg.InputPath))

	written, err := write(ctx, cfg)
	if err != nil {
		slog.Error("rotwriter failed", slog.String("error", err.Error()))
		return errors.WithMessage(err, "write")
	}

	slog.Info("rotwriter finished", slog.Uint64("records", written))

	return nil
}

func write(ctx context.Context, cfg *config.Config) (uint64, error) {
	f, err := os.Open(cfg.InputPath)
	if err != nil {
		return 0, errors.WithMessagef(err, "open input %q", cfg.InputPath)
	}
	defer f.Close()

	reader := bufio.NewReader(f)

	firstLine, err := reader.ReadBytes('\n')
	if err != nil && len(firstLine) == 0 {
		return 0, errors.WithMessage(err, "read first line")
	}

	var sample map[string]any
	if err := json.Unmarshal(firstLine, &sample); err != nil {
		return 0, errors.WithMessage(err, "decode first line to infer schema")
	}

	schemaDef, order := inferSchema(sample)

	partitionBy := make([]record.ColumnPath, 0, len(cfg.PartitionBy))
	for _, col := range cfg.PartitionBy {
		partitionBy = append(partitionBy, record.ParseColumnPath(col))
	}

	codec := parquet.CodecByName(cfg.CompressionCodec)

	builder := rotwriter.NewGenericBuilder(cfg.BasePath, &schemaDef).
		MaxCount(cfg.MaxCount).
		MaxDuration(cfg.MaxDuration).
		ChunkSize(cfg.ChunkSize).
		PartitionBy(partitionBy...).
		Options(columnar.Options{CompressionCodecName: codec})

	pipeline, err := builder.Build(parquet.NewWriterFunc(parquet.NewFileSystem()), codec.Extension()+".parquet")
	if err != nil {
		return 0, errors.WithMessage(err, "build pipeline")
	}

	var (
		decodeErr error
		written   uint64
	)

	upstream := jsonlAll(firstLine, reader, order, func(err error) { decodeErr = err })

	onEmit := func(_ record.Record) error {
		written++
		return nil
	}

	if err := pipeline.Run(ctx, upstream, onEmit); err != nil {
		return written, err
	}

	if decodeErr != nil {
		return written, decodeErr
	}

	return written, nil
}

// jsonlAll prepends the already-consumed firstLine back onto the stream
// before continuing to scan r, so the caller can peek a line to infer the
// schema without losing it.
func jsonlAll(firstLine []byte, r *bufio.Reader, order []string, onErr func(error)) func(yield func(record.Record) bool) {
	return func(yield func(record.Record) bool) {
		rec, err := decodeLine(firstLine, order)
		if err != nil {
			onErr(err)
			return
		}

		if !yield(rec) {
			return
		}

		for rec := range jsonlRecords(r, order, onErr) {
			if !yield(rec) {
				return
			}
		}
	}
}
