// Package io provides I/O operations for reading and writing DataFrame data.
//
// This package includes readers and writers for CSV, JSON and Parquet, with
// declared or inferred column kinds. CSV and JSON record readers build frames
// through the DataFrame append path, so every ingested row is validated like
// any other row insertion. Column documents and Parquet files already carry
// kinds and are assembled column by column.
//
// Key components:
//   - DataReader/DataWriter interfaces for pluggable I/O backends
//   - CSVReader/CSVWriter with configurable separator, quote and escape characters
//   - JSONReader/JSONWriter for column documents, record arrays and JSON lines
//   - ParquetReader/ParquetWriter backed by Arrow's pqarrow package
package io

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/colframe/internal/config"
	"github.com/paveg/colframe/internal/dataframe"
	"github.com/paveg/colframe/internal/series"
)

const (
	// DefaultBatchSize is the default batch size for Parquet row groups
	DefaultBatchSize = 1000
)

// DataReader defines the interface for reading data from various sources
type DataReader interface {
	// Read reads data from the source and returns a DataFrame
	Read() (*dataframe.DataFrame, error)
}

// DataWriter defines the interface for writing data to various destinations
type DataWriter interface {
	// Write writes the DataFrame to the destination
	Write(df *dataframe.DataFrame) error
}

// CSVOptions contains configuration options for CSV operations
type CSVOptions struct {
	// Separator is the field separator (default: comma)
	Separator rune
	// Quote starts and ends a quoted field (default: double quote)
	Quote rune
	// Escape makes the next character inside a quoted field literal
	// (default: backslash). When zero or equal to Quote, a doubled quote is
	// a literal quote.
	Escape rune
	// HasHeader indicates whether the first record contains column names
	HasHeader bool
	// Drop is the number of leading lines skipped before the header
	Drop int
	// Comment starts a line that is skipped (default: 0 = disabled)
	Comment rune
	// TrimSpace trims whitespace around unquoted fields
	TrimSpace bool
	// InferTypes infers column kinds; otherwise undeclared columns are strings
	InferTypes bool
	// Types declares column kinds by name, overriding inference
	Types map[string]series.Kind
}

// DefaultCSVOptions returns CSV options built from the global configuration
func DefaultCSVOptions() CSVOptions {
	return CSVOptionsFromConfig(config.GetGlobalConfig())
}

// CSVOptionsFromConfig returns CSV options using the configured characters
func CSVOptionsFromConfig(cfg config.Config) CSVOptions {
	cfg = cfg.WithDefaults()
	return CSVOptions{
		Separator:  firstRune(cfg.CSV.Separator),
		Quote:      firstRune(cfg.CSV.Quote),
		Escape:     firstRune(cfg.CSV.Escape),
		HasHeader:  !cfg.CSV.NoHeader,
		TrimSpace:  true,
		InferTypes: true,
	}
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// CSVReader reads CSV data and converts it to DataFrames
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
}

// NewCSVReader creates a new CSV reader with the specified options
func NewCSVReader(reader io.Reader, options CSVOptions) *CSVReader {
	return &CSVReader{
		reader:  reader,
		options: options,
	}
}

// CSVWriter writes DataFrames to CSV format
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{
		writer:  writer,
		options: options,
	}
}

// JSONFormat represents the JSON layout.
type JSONFormat int

const (
	// JSONColumns is a column document carrying names, kinds and values.
	JSONColumns JSONFormat = iota
	// JSONArray is an array of objects, one per row.
	JSONArray
	// JSONLines is one object per line.
	JSONLines
)

// JSONOptions contains configuration options for JSON operations.
type JSONOptions struct {
	// Format selects the document layout.
	Format JSONFormat
	// TypeInference infers kinds for record layouts; otherwise values become strings.
	TypeInference bool
	// Indent pretty prints written documents (ignored for JSONLines).
	Indent bool
}

// DefaultJSONOptions returns default JSON options.
func DefaultJSONOptions() JSONOptions {
	return JSONOptions{
		Format:        JSONColumns,
		TypeInference: true,
	}
}

// JSONReader reads JSON data and converts it to DataFrames.
type JSONReader struct {
	reader  io.Reader
	options JSONOptions
}

// NewJSONReader creates a new JSON reader.
func NewJSONReader(reader io.Reader, options JSONOptions) *JSONReader {
	return &JSONReader{reader: reader, options: options}
}

// JSONWriter writes DataFrames to JSON format.
type JSONWriter struct {
	writer  io.Writer
	options JSONOptions
}

// NewJSONWriter creates a new JSON writer.
func NewJSONWriter(writer io.Writer, options JSONOptions) *JSONWriter {
	return &JSONWriter{writer: writer, options: options}
}

// ParquetOptions contains configuration options for Parquet operations
type ParquetOptions struct {
	// Compression type for Parquet files: snappy, gzip, zstd, lz4 or uncompressed
	Compression string
	// BatchSize is the maximum number of rows per row group
	BatchSize int
}

// DefaultParquetOptions returns default Parquet options
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression: "snappy",
		BatchSize:   DefaultBatchSize,
	}
}

// ParquetReader reads Parquet data and converts it to DataFrames
type ParquetReader struct {
	reader  io.Reader
	options ParquetOptions
	mem     memory.Allocator
}

// NewParquetReader creates a new Parquet reader with the specified options
func NewParquetReader(reader io.Reader, options ParquetOptions, mem memory.Allocator) *ParquetReader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &ParquetReader{
		reader:  reader,
		options: options,
		mem:     mem,
	}
}

// ParquetWriter writes DataFrames to Parquet format
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
	mem     memory.Allocator
}

// NewParquetWriter creates a new Parquet writer with the specified options
func NewParquetWriter(writer io.Writer, options ParquetOptions, mem memory.Allocator) *ParquetWriter {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &ParquetWriter{
		writer:  writer,
		options: options,
		mem:     mem,
	}
}
