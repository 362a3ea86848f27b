package io

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/paveg/colframe/internal/dataframe"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/logging"
	"github.com/paveg/colframe/internal/monitoring"
	"go.uber.org/zap"
)

// compressionCodec maps a codec name to its Parquet compression.
func compressionCodec(op, name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "lz4":
		return compress.Codecs.Lz4Raw, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "uncompressed", "none":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, dferrors.NewInvalidInputError(op, fmt.Sprintf("unknown compression %q", name))
	}
}

// Read reads Parquet data and returns a DataFrame.
func (r *ParquetReader) Read() (df *dataframe.DataFrame, err error) {
	const op = "ReadParquet"
	opLog := logging.WithOperation(op)
	defer func() {
		rows := 0
		if df != nil {
			rows = df.Len()
		}
		opLog.Done(err, zap.Int("rows", rows))
	}()

	err = monitoring.Record(op, func(m *monitoring.OperationMetrics) error {
		// Parquet needs random access for the footer
		data, readErr := io.ReadAll(r.reader)
		if readErr != nil {
			return fmt.Errorf("reading data: %w", readErr)
		}

		pqReader, readErr := file.NewParquetReader(bytes.NewReader(data))
		if readErr != nil {
			return fmt.Errorf("creating parquet file reader: %w", readErr)
		}
		defer pqReader.Close()

		batchSize := r.options.BatchSize
		if batchSize <= 0 {
			batchSize = DefaultBatchSize
		}
		arrowReader, readErr := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{BatchSize: int64(batchSize)}, r.mem)
		if readErr != nil {
			return fmt.Errorf("creating arrow file reader: %w", readErr)
		}

		table, readErr := arrowReader.ReadTable(context.Background())
		if readErr != nil {
			return fmt.Errorf("reading table: %w", readErr)
		}
		defer table.Release()

		df, readErr = dataframe.FromTable(table, r.mem)
		if readErr != nil {
			return readErr
		}
		m.RowsProcessed = int64(df.Len())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return df, nil
}

// Write writes the DataFrame to Parquet format. Rows are split into row
// groups of at most BatchSize rows.
func (w *ParquetWriter) Write(df *dataframe.DataFrame) (err error) {
	const op = "WriteParquet"
	opLog := logging.WithOperation(op, zap.Int("rows", df.Len()), zap.String("compression", w.options.Compression))
	defer func() { opLog.Done(err) }()

	return monitoring.Record(op, func(m *monitoring.OperationMetrics) error {
		if df.Width() == 0 {
			return dferrors.NewInvalidInputError(op, "cannot write a frame without columns")
		}
		codec, err := compressionCodec(op, w.options.Compression)
		if err != nil {
			return err
		}
		batchSize := w.options.BatchSize
		if batchSize <= 0 {
			batchSize = DefaultBatchSize
		}

		rec, err := df.ToRecord(w.mem)
		if err != nil {
			return err
		}
		defer rec.Release()

		props := parquet.NewWriterProperties(
			parquet.WithCompression(codec),
			parquet.WithBatchSize(int64(batchSize)),
			parquet.WithMaxRowGroupLength(int64(batchSize)),
			parquet.WithAllocator(w.mem),
		)
		arrowProps := pqarrow.NewArrowWriterProperties(
			pqarrow.WithAllocator(w.mem),
			pqarrow.WithStoreSchema(),
		)

		writer, err := pqarrow.NewFileWriter(rec.Schema(), w.writer, props, arrowProps)
		if err != nil {
			return fmt.Errorf("creating file writer: %w", err)
		}
		if rec.NumRows() > 0 {
			if err := writer.Write(rec); err != nil {
				_ = writer.Close()
				return fmt.Errorf("writing record: %w", err)
			}
		}
		if err := writer.Close(); err != nil {
			return fmt.Errorf("closing file writer: %w", err)
		}
		m.RowsProcessed = int64(df.Len())
		return nil
	})
}
