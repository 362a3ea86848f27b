package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/paveg/colframe/internal/dataframe"
	dferrors "github.com/paveg/colframe/internal/errors"
)

// Format identifies a file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatTSV
	FormatJSON
	FormatJSONLines
	FormatParquet
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatJSON:
		return "json"
	case FormatJSONLines:
		return "jsonl"
	case FormatParquet:
		return "parquet"
	default:
		return "unknown"
	}
}

// ParseFormat resolves a format name such as "csv" or "parquet".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "csv":
		return FormatCSV, nil
	case "tsv", "tab":
		return FormatTSV, nil
	case "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONLines, nil
	case "parquet", "pq":
		return FormatParquet, nil
	default:
		return FormatUnknown, dferrors.NewInvalidInputError("ParseFormat", fmt.Sprintf("unknown format %q", name))
	}
}

// FormatFromPath detects the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return FormatUnknown, dferrors.NewInvalidInputError("FormatFromPath", fmt.Sprintf("%s has no extension", path))
	}
	return ParseFormat(ext)
}

// NewReader returns a reader for the format with default options.
func NewReader(r io.Reader, format Format) (DataReader, error) {
	switch format {
	case FormatCSV:
		return NewCSVReader(r, DefaultCSVOptions()), nil
	case FormatTSV:
		opts := DefaultCSVOptions()
		opts.Separator = '\t'
		return NewCSVReader(r, opts), nil
	case FormatJSON:
		return NewJSONReader(r, DefaultJSONOptions()), nil
	case FormatJSONLines:
		opts := DefaultJSONOptions()
		opts.Format = JSONLines
		return NewJSONReader(r, opts), nil
	case FormatParquet:
		return NewParquetReader(r, DefaultParquetOptions(), nil), nil
	default:
		return nil, dferrors.NewInvalidInputError("NewReader", fmt.Sprintf("unsupported format %s", format))
	}
}

// NewWriter returns a writer for the format with default options.
func NewWriter(w io.Writer, format Format) (DataWriter, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(w, DefaultCSVOptions()), nil
	case FormatTSV:
		opts := DefaultCSVOptions()
		opts.Separator = '\t'
		return NewCSVWriter(w, opts), nil
	case FormatJSON:
		return NewJSONWriter(w, DefaultJSONOptions()), nil
	case FormatJSONLines:
		opts := DefaultJSONOptions()
		opts.Format = JSONLines
		return NewJSONWriter(w, opts), nil
	case FormatParquet:
		return NewParquetWriter(w, DefaultParquetOptions(), nil), nil
	default:
		return nil, dferrors.NewInvalidInputError("NewWriter", fmt.Sprintf("unsupported format %s", format))
	}
}

// ReadFile reads a frame from path, picking the format from its extension.
func ReadFile(path string) (*dataframe.DataFrame, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader, err := NewReader(f, format)
	if err != nil {
		return nil, err
	}
	return reader.Read()
}

// WriteFile writes df to path, picking the format from its extension.
func WriteFile(path string, df *dataframe.DataFrame) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return writeFile(path, func(f *os.File) (DataWriter, error) { return NewWriter(f, format) }, df)
}

// ReadCSVFile reads a CSV file with explicit options.
func ReadCSVFile(path string, opts CSVOptions) (*dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewCSVReader(f, opts).Read()
}

// WriteCSVFile writes a CSV file with explicit options.
func WriteCSVFile(path string, df *dataframe.DataFrame, opts CSVOptions) error {
	return writeFile(path, func(f *os.File) (DataWriter, error) { return NewCSVWriter(f, opts), nil }, df)
}

func writeFile(path string, open func(*os.File) (DataWriter, error), df *dataframe.DataFrame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	var result *multierror.Error
	writer, err := open(f)
	if err == nil {
		err = writer.Write(df)
	}
	if err != nil {
		result = multierror.Append(result, err)
	}
	if closeErr := f.Close(); closeErr != nil {
		result = multierror.Append(result, fmt.Errorf("closing %s: %w", path, closeErr))
	}
	return result.ErrorOrNil()
}
