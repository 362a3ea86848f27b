package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/paveg/colframe/internal/common"
	"github.com/paveg/colframe/internal/config"
	"github.com/paveg/colframe/internal/dataframe"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/logging"
	"github.com/paveg/colframe/internal/monitoring"
	"github.com/paveg/colframe/internal/parallel"
	"github.com/paveg/colframe/internal/series"
	"go.uber.org/zap"
)

func (o CSVOptions) validate(op string) error {
	switch {
	case o.Separator == 0:
		return dferrors.NewInvalidInputError(op, "separator must be set")
	case o.Separator == '\n' || o.Separator == '\r':
		return dferrors.NewInvalidInputError(op, "separator cannot be a line break")
	case o.Separator == o.Quote:
		return dferrors.NewInvalidInputError(op, fmt.Sprintf("separator and quote are both %q", o.Separator))
	case o.Escape != 0 && o.Escape == o.Separator:
		return dferrors.NewInvalidInputError(op, fmt.Sprintf("separator and escape are both %q", o.Separator))
	case o.Drop < 0:
		return dferrors.NewInvalidInputError(op, fmt.Sprintf("drop must be non-negative, got %d", o.Drop))
	}
	return nil
}

// Read reads CSV data and returns a DataFrame
func (r *CSVReader) Read() (df *dataframe.DataFrame, err error) {
	const op = "ReadCSV"
	opLog := logging.WithOperation(op)
	defer func() {
		rows := 0
		if df != nil {
			rows = df.Len()
		}
		opLog.Done(err, zap.Int("rows", rows))
	}()

	err = monitoring.Record(op, func(m *monitoring.OperationMetrics) error {
		var readErr error
		df, readErr = r.read(op, m)
		return readErr
	})
	if err != nil {
		return nil, err
	}
	return df, nil
}

func (r *CSVReader) read(op string, m *monitoring.OperationMetrics) (*dataframe.DataFrame, error) {
	if err := r.options.validate(op); err != nil {
		return nil, err
	}

	p := newCSVParser(r.reader, r.options)
	if err := p.skipLines(r.options.Drop); err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	var (
		records [][]string
		lines   []int
	)
	for {
		record, line, err := p.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
		lines = append(lines, line)
	}

	if len(records) == 0 {
		return dataframe.NewEmpty(), nil
	}

	var header []string
	if r.options.HasHeader {
		header = records[0]
		records, lines = records[1:], lines[1:]
	} else {
		header = make([]string, len(records[0]))
		for i := range header {
			header[i] = fmt.Sprintf("column_%d", i)
		}
	}

	for i, record := range records {
		if len(record) != len(header) {
			return nil, dferrors.NewSchemaMismatchError(op,
				fmt.Sprintf("line %d has %d fields, expected %d", lines[i], len(record), len(header)), nil)
		}
	}

	kinds, parallelized, err := r.resolveKinds(op, header, records)
	if err != nil {
		return nil, err
	}
	m.Parallel = parallelized

	columns := make([]dataframe.ISeries, len(header))
	for j, name := range header {
		col, err := series.NewOfKind(name, kinds[j])
		if err != nil {
			return nil, err
		}
		columns[j] = col
	}
	df, err := dataframe.New(columns...)
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	values := make([]any, len(header))
	for i, record := range records {
		for j, cell := range record {
			if cell == "" && kinds[j] != series.KindString {
				values[j] = zeroOf(kinds[j])
			} else {
				values[j] = cell
			}
		}
		if err := df.AppendRow(values...); err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", lines[i], err)
		}
	}

	m.RowsProcessed = int64(df.Len())
	return df, nil
}

// resolveKinds picks each column's kind: declared, inferred or string.
// Inference runs on the worker pool once the input reaches the configured
// parallel threshold.
func (r *CSVReader) resolveKinds(op string, header []string, records [][]string) ([]series.Kind, bool, error) {
	for name := range r.options.Types {
		if !containsString(header, name) {
			return nil, false, dferrors.NewColumnNotFoundError(op, name)
		}
	}

	kinds := make([]series.Kind, len(header))
	var pending []int
	for j, name := range header {
		if kind, ok := r.options.Types[name]; ok {
			kinds[j] = kind
			continue
		}
		if !r.options.InferTypes {
			kinds[j] = series.KindString
			continue
		}
		pending = append(pending, j)
	}

	cfg := config.GetGlobalConfig()
	if len(records) < cfg.ParallelThreshold || len(pending) < 2 {
		for _, j := range pending {
			kinds[j] = inferKind(records, j)
		}
		return kinds, false, nil
	}

	pool := parallel.NewWorkerPool(cfg.WorkerPoolSize)
	defer pool.Close()
	inferred, err := parallel.ProcessIndexed(pool, pending, func(_ int, j int) (series.Kind, error) {
		return inferKind(records, j), nil
	})
	if err != nil {
		return nil, true, err
	}
	for i, j := range pending {
		kinds[j] = inferred[i]
	}
	return kinds, true, nil
}

// inferKind determines the most specific kind for column j: bool, then
// int64, then float64, then string. Empty cells are ignored.
func inferKind(records [][]string, j int) series.Kind {
	canBeBool := true
	canBeInt := true
	canBeFloat := true
	hasValue := false

	for _, record := range records {
		value := record[j]
		if value == "" {
			continue
		}
		hasValue = true

		if canBeBool && !common.IsBoolString(value) {
			canBeBool = false
		}
		if canBeInt {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				canBeInt = false
			}
		}
		if canBeFloat && !isDecimalFloat(value) {
			canBeFloat = false
		}
		if !canBeBool && !canBeInt && !canBeFloat {
			break
		}
	}

	switch {
	case !hasValue:
		return series.KindString
	case canBeBool:
		return series.KindBool
	case canBeInt:
		return series.KindInt64
	case canBeFloat:
		return series.KindFloat64
	default:
		return series.KindString
	}
}

// isDecimalFloat accepts finite decimal literals only. NaN, Inf and hex
// floats parse with strconv but read as text in a CSV cell.
func isDecimalFloat(value string) bool {
	if strings.ContainsAny(value, "xX") {
		return false
	}
	f, err := strconv.ParseFloat(value, 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}

func zeroOf(kind series.Kind) any {
	switch kind {
	case series.KindBool:
		return false
	case series.KindString:
		return ""
	default:
		return 0
	}
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// Write writes the DataFrame to CSV format
func (w *CSVWriter) Write(df *dataframe.DataFrame) (err error) {
	const op = "WriteCSV"
	opLog := logging.WithOperation(op, zap.Int("rows", df.Len()))
	defer func() { opLog.Done(err) }()

	return monitoring.Record(op, func(m *monitoring.OperationMetrics) error {
		if err := w.options.validate(op); err != nil {
			return err
		}
		columns, err := df.RawCols(df.Columns()...)
		if err != nil {
			return err
		}

		bw := bufio.NewWriter(w.writer)
		if w.options.HasHeader && len(columns) > 0 {
			if err := w.writeRecord(bw, df.Columns()); err != nil {
				return fmt.Errorf("writing header: %w", err)
			}
		}

		row := make([]string, len(columns))
		for i := range df.Len() {
			for j, col := range columns {
				row[j] = col.Format(i)
			}
			if err := w.writeRecord(bw, row); err != nil {
				return fmt.Errorf("writing row %d: %w", i, err)
			}
		}
		m.RowsProcessed = int64(df.Len())
		return bw.Flush()
	})
}

func (w *CSVWriter) writeRecord(bw *bufio.Writer, fields []string) error {
	for j, field := range fields {
		if j > 0 {
			if _, err := bw.WriteRune(w.options.Separator); err != nil {
				return err
			}
		}
		if w.needsQuote(field, j, len(fields)) {
			field = w.quote(field)
		}
		if _, err := bw.WriteString(field); err != nil {
			return err
		}
	}
	return bw.WriteByte('\n')
}

// needsQuote reports whether field must be quoted to read back unchanged
func (w *CSVWriter) needsQuote(field string, j, width int) bool {
	o := w.options
	if field == "" {
		// a lone empty field would otherwise be a blank line
		return width == 1
	}
	if field != strings.TrimSpace(field) {
		return true
	}
	if j == 0 && o.Comment != 0 && strings.HasPrefix(field, string(o.Comment)) {
		return true
	}
	return strings.ContainsFunc(field, func(r rune) bool {
		return r == o.Separator || r == o.Quote || (o.Escape != 0 && r == o.Escape) || r == '\n' || r == '\r'
	})
}

func (w *CSVWriter) quote(field string) string {
	o := w.options
	var b strings.Builder
	b.Grow(len(field) + 2)
	b.WriteRune(o.Quote)
	for _, r := range field {
		switch {
		case r == o.Quote && (o.Escape == 0 || o.Escape == o.Quote):
			b.WriteRune(o.Quote)
		case r == o.Quote || (o.Escape != 0 && r == o.Escape):
			b.WriteRune(o.Escape)
		}
		b.WriteRune(r)
	}
	b.WriteRune(o.Quote)
	return b.String()
}

const (
	stateFieldStart = iota
	stateUnquoted
	stateQuoted
	stateAfterQuote
)

// csvParser splits input into records. Quoted fields may span lines; inside
// them the escape character makes the next character literal, or, when the
// escape is unset or equals the quote, a doubled quote stands for one quote.
type csvParser struct {
	in   *bufio.Reader
	opts CSVOptions
	line int
}

func newCSVParser(r io.Reader, opts CSVOptions) *csvParser {
	return &csvParser{in: bufio.NewReader(r), opts: opts, line: 1}
}

func (p *csvParser) read() (rune, error) {
	r, _, err := p.in.ReadRune()
	if err == nil && r == '\n' {
		p.line++
	}
	return r, err
}

// peek returns the next rune without consuming it; ok is false at end of input
func (p *csvParser) peek() (r rune, ok bool) {
	r, _, err := p.in.ReadRune()
	if err != nil {
		return 0, false
	}
	_ = p.in.UnreadRune()
	return r, true
}

func (p *csvParser) skipLines(n int) error {
	for range n {
		_, err := p.in.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		p.line++
	}
	return nil
}

// skipIgnored consumes blank and comment lines. It returns io.EOF when no
// record remains.
func (p *csvParser) skipIgnored() error {
	for {
		r, _, err := p.in.ReadRune()
		if err != nil {
			return err
		}
		_ = p.in.UnreadRune()

		switch {
		case r == '\n':
			_, _ = p.read()
		case r == '\r':
			_, _ = p.read()
			if next, ok := p.peek(); ok && next == '\n' {
				_, _ = p.read()
			}
		case p.opts.Comment != 0 && r == p.opts.Comment:
			if err := p.skipLines(1); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (p *csvParser) syntaxError(line int, format string, args ...any) error {
	return dferrors.NewInvalidInputError("ReadCSV", fmt.Sprintf("line %d: ", line)+fmt.Sprintf(format, args...))
}

// endOfLine consumes the '\n' of a "\r\n" pair and reports whether r ends the line
func (p *csvParser) endOfLine(r rune) bool {
	if r == '\n' {
		return true
	}
	if r == '\r' {
		if next, ok := p.peek(); ok && next == '\n' {
			_, _ = p.read()
			return true
		}
	}
	return false
}

// rfcQuotes reports whether a doubled quote is the way to write a literal quote
func (p *csvParser) rfcQuotes() bool {
	return p.opts.Escape == 0 || p.opts.Escape == p.opts.Quote
}

// next returns the next record and the line it starts on, or io.EOF
func (p *csvParser) next() ([]string, int, error) {
	if err := p.skipIgnored(); err != nil {
		return nil, 0, err
	}
	start := p.line

	var (
		record []string
		field  strings.Builder
		state  = stateFieldStart
	)
	emit := func(quoted bool) {
		s := field.String()
		if !quoted && p.opts.TrimSpace {
			s = strings.TrimSpace(s)
		}
		record = append(record, s)
		field.Reset()
	}

	for {
		r, err := p.read()
		if errors.Is(err, io.EOF) {
			switch state {
			case stateQuoted:
				return nil, start, p.syntaxError(start, "unterminated quoted field")
			case stateAfterQuote:
				emit(true)
			default:
				emit(false)
			}
			return record, start, nil
		}
		if err != nil {
			return nil, start, err
		}

		switch state {
		case stateFieldStart, stateUnquoted:
			switch {
			case r == p.opts.Separator:
				emit(false)
				state = stateFieldStart
			case p.endOfLine(r):
				emit(false)
				return record, start, nil
			case state == stateFieldStart && r == p.opts.Quote:
				// whitespace before an opening quote is not part of the field
				field.Reset()
				state = stateQuoted
			case state == stateFieldStart && (r == ' ' || r == '\t'):
				field.WriteRune(r)
			default:
				field.WriteRune(r)
				state = stateUnquoted
			}

		case stateQuoted:
			switch {
			case r == p.opts.Quote && p.rfcQuotes():
				if next, ok := p.peek(); ok && next == p.opts.Quote {
					_, _ = p.read()
					field.WriteRune(r)
				} else {
					state = stateAfterQuote
				}
			case r == p.opts.Quote:
				state = stateAfterQuote
			case p.opts.Escape != 0 && r == p.opts.Escape:
				escaped, err := p.read()
				if err != nil {
					return nil, start, p.syntaxError(start, "unterminated quoted field")
				}
				field.WriteRune(escaped)
			default:
				field.WriteRune(r)
			}

		case stateAfterQuote:
			switch {
			case r == p.opts.Separator:
				emit(true)
				state = stateFieldStart
			case p.endOfLine(r):
				emit(true)
				return record, start, nil
			case r == ' ' || r == '\t':
			default:
				return nil, start, p.syntaxError(p.line, "unexpected %q after quoted field", r)
			}
		}
	}
}
