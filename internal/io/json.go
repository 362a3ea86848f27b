package io

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/paveg/colframe/internal/dataframe"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/logging"
	"github.com/paveg/colframe/internal/monitoring"
	"github.com/paveg/colframe/internal/series"
	"go.uber.org/zap"
)

// columnDocument is the JSONColumns layout:
//
//	{"columns":[{"name":"id","kind":"int64","values":[1,2,3]}]}
type columnDocument struct {
	Columns []columnEntry `json:"columns"`
}

type columnEntry struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Values []any  `json:"values"`
}

// Read reads JSON data and returns a DataFrame.
func (r *JSONReader) Read() (df *dataframe.DataFrame, err error) {
	const op = "ReadJSON"
	opLog := logging.WithOperation(op, zap.Int("format", int(r.options.Format)))
	defer func() {
		rows := 0
		if df != nil {
			rows = df.Len()
		}
		opLog.Done(err, zap.Int("rows", rows))
	}()

	err = monitoring.Record(op, func(m *monitoring.OperationMetrics) error {
		var readErr error
		switch r.options.Format {
		case JSONColumns:
			df, readErr = r.readColumns(op)
		case JSONArray:
			df, readErr = r.readJSONArray(op)
		case JSONLines:
			df, readErr = r.readJSONLines(op)
		default:
			readErr = dferrors.NewInvalidInputError(op, fmt.Sprintf("unsupported JSON format: %d", r.options.Format))
		}
		if readErr == nil {
			m.RowsProcessed = int64(df.Len())
		}
		return readErr
	})
	if err != nil {
		return nil, err
	}
	return df, nil
}

func (r *JSONReader) decoder(rd io.Reader) *json.Decoder {
	dec := json.NewDecoder(rd)
	dec.UseNumber()
	return dec
}

// readColumns reads the column document. Kinds are taken from the document,
// so a round trip keeps them exactly.
func (r *JSONReader) readColumns(op string) (*dataframe.DataFrame, error) {
	var doc columnDocument
	if err := r.decoder(r.reader).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding JSON columns: %w", err)
	}

	columns := make([]dataframe.ISeries, len(doc.Columns))
	for i, entry := range doc.Columns {
		kind, err := series.ParseKind(entry.Kind)
		if err != nil {
			return nil, dferrors.NewUnsupportedTypeError(op, entry.Kind)
		}
		col, err := series.NewOfKind(entry.Name, kind)
		if err != nil {
			return nil, err
		}
		for _, v := range entry.Values {
			if v == nil {
				v = zeroOf(kind)
			}
			if err := col.AppendAny(normalizeJSON(v)); err != nil {
				return nil, err
			}
		}
		columns[i] = col
	}
	return dataframe.New(columns...)
}

// readJSONArray reads an array of row objects.
func (r *JSONReader) readJSONArray(op string) (*dataframe.DataFrame, error) {
	var records []map[string]any
	if err := r.decoder(r.reader).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding JSON array: %w", err)
	}
	return r.recordsToDataFrame(op, records)
}

// readJSONLines reads one row object per line. Blank lines are skipped.
func (r *JSONReader) readJSONLines(op string) (*dataframe.DataFrame, error) {
	scanner := bufio.NewScanner(r.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []map[string]any
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record map[string]any
		if err := r.decoder(bytes.NewReader(line)).Decode(&record); err != nil {
			return nil, fmt.Errorf("decoding JSON line %d: %w", lineNum, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning JSON lines: %w", err)
	}
	return r.recordsToDataFrame(op, records)
}

// recordsToDataFrame builds a frame from row objects. Columns are the union
// of all keys in sorted order; missing keys and nulls become zero values.
func (r *JSONReader) recordsToDataFrame(op string, records []map[string]any) (*dataframe.DataFrame, error) {
	if len(records) == 0 {
		return dataframe.NewEmpty(), nil
	}

	keySet := make(map[string]struct{})
	for _, record := range records {
		for key := range record {
			keySet[key] = struct{}{}
		}
	}
	names := make([]string, 0, len(keySet))
	for key := range keySet {
		names = append(names, key)
	}
	sort.Strings(names)

	kinds := make([]series.Kind, len(names))
	columns := make([]dataframe.ISeries, len(names))
	for j, name := range names {
		kinds[j] = series.KindString
		if r.options.TypeInference {
			kinds[j] = inferJSONKind(records, name)
		}
		col, err := series.NewOfKind(name, kinds[j])
		if err != nil {
			return nil, err
		}
		columns[j] = col
	}

	df, err := dataframe.New(columns...)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(names))
	for i, record := range records {
		for j, name := range names {
			v, ok := record[name]
			if !ok || v == nil {
				values[j] = zeroOf(kinds[j])
				continue
			}
			values[j] = normalizeJSON(v)
		}
		if err := df.AppendRow(values...); err != nil {
			return nil, fmt.Errorf("%s record %d: %w", op, i, err)
		}
	}
	return df, nil
}

// inferJSONKind picks bool when every value is a boolean, int64 when every
// value is an integral number, float64 for any other all-number column and
// string otherwise. Nulls and missing keys are ignored.
func inferJSONKind(records []map[string]any, name string) series.Kind {
	allBool, allInt, allNumber := true, true, true
	seen := false
	for _, record := range records {
		v, ok := record[name]
		if !ok || v == nil {
			continue
		}
		seen = true
		switch val := v.(type) {
		case bool:
			allInt, allNumber = false, false
		case json.Number:
			allBool = false
			if _, err := strconv.ParseInt(val.String(), 10, 64); err != nil {
				allInt = false
			}
		default:
			return series.KindString
		}
	}
	switch {
	case !seen:
		return series.KindString
	case allBool:
		return series.KindBool
	case allInt:
		return series.KindInt64
	case allNumber:
		return series.KindFloat64
	default:
		return series.KindString
	}
}

// normalizeJSON turns decoded values into something a column can convert:
// numbers become their literal text and nested values their JSON encoding.
func normalizeJSON(v any) any {
	switch val := v.(type) {
	case json.Number:
		return val.String()
	case map[string]any, []any:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(encoded)
	default:
		return v
	}
}

// Write writes the DataFrame to JSON format.
func (w *JSONWriter) Write(df *dataframe.DataFrame) (err error) {
	const op = "WriteJSON"
	opLog := logging.WithOperation(op, zap.Int("format", int(w.options.Format)), zap.Int("rows", df.Len()))
	defer func() { opLog.Done(err) }()

	return monitoring.Record(op, func(m *monitoring.OperationMetrics) error {
		var data []byte
		var encErr error
		switch w.options.Format {
		case JSONColumns:
			data, encErr = w.encodeColumns(df)
		case JSONArray:
			data, encErr = w.encodeRecords(df, false)
		case JSONLines:
			data, encErr = w.encodeRecords(df, true)
		default:
			encErr = dferrors.NewInvalidInputError(op, fmt.Sprintf("unsupported JSON format: %d", w.options.Format))
		}
		if encErr != nil {
			return encErr
		}
		if _, err := w.writer.Write(data); err != nil {
			return fmt.Errorf("writing JSON: %w", err)
		}
		m.RowsProcessed = int64(df.Len())
		return nil
	})
}

func (w *JSONWriter) encodeColumns(df *dataframe.DataFrame) ([]byte, error) {
	doc := columnDocument{Columns: make([]columnEntry, 0, df.Width())}
	for j := range df.Width() {
		col, err := df.RawICol(j)
		if err != nil {
			return nil, err
		}
		values := make([]any, col.Len())
		for i := range values {
			values[i], _ = col.GetAny(i)
		}
		doc.Columns = append(doc.Columns, columnEntry{Name: col.Name(), Kind: col.Kind().String(), Values: values})
	}

	var (
		data []byte
		err  error
	)
	if w.options.Indent {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding JSON columns: %w", err)
	}
	return append(data, '\n'), nil
}

// encodeRecords writes one object per row with keys in column order
func (w *JSONWriter) encodeRecords(df *dataframe.DataFrame, lines bool) ([]byte, error) {
	names := df.Columns()
	keys := make([][]byte, len(names))
	for j, name := range names {
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		keys[j] = key
	}

	var buf bytes.Buffer
	if !lines {
		buf.WriteByte('[')
	}
	for i, record := range df.Records() {
		if i > 0 && !lines {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, v := range record {
			if j > 0 {
				buf.WriteByte(',')
			}
			value, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encoding row %d column %s: %w", i, names[j], err)
			}
			buf.Write(keys[j])
			buf.WriteByte(':')
			buf.Write(value)
		}
		buf.WriteByte('}')
		if lines {
			buf.WriteByte('\n')
		}
	}
	if lines {
		return buf.Bytes(), nil
	}
	buf.WriteByte(']')

	if w.options.Indent {
		var indented bytes.Buffer
		if err := json.Indent(&indented, buf.Bytes(), "", "  "); err != nil {
			return nil, err
		}
		indented.WriteByte('\n')
		return indented.Bytes(), nil
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
