package dataframe

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/paveg/colframe/internal/config"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/logging"
	"github.com/paveg/colframe/internal/validation"
	"go.uber.org/zap"
)

// mutationGuard collects undo steps while a mutation is applied. Unless the
// mutation commits, release replays them newest first, so a failure or panic
// part way through never leaves columns with diverging lengths.
type mutationGuard struct {
	df        *DataFrame
	op        string
	undo      []func()
	committed bool
}

// begin opens a guarded mutation; it fails while column buffers are pinned
func (df *DataFrame) begin(op string) (*mutationGuard, error) {
	if df.pins > 0 {
		return nil, dferrors.NewPinnedError(op, df.pins)
	}
	return &mutationGuard{df: df, op: op}, nil
}

func (g *mutationGuard) record(undo func()) {
	g.undo = append(g.undo, undo)
}

func (g *mutationGuard) commit() {
	g.committed = true
	g.df.version++
}

// release must be deferred right after begin. errp is the mutation's named
// error result; it receives the verification failure when VerifyMutations is set.
func (g *mutationGuard) release(errp *error) {
	if !g.committed {
		if len(g.undo) > 0 {
			logging.L().Debug("rolling back mutation",
				zap.String("op", g.op), zap.Int("steps", len(g.undo)))
		}
		for i := len(g.undo) - 1; i >= 0; i-- {
			g.undo[i]()
		}
		g.undo = nil
		return
	}
	if config.GetGlobalConfig().VerifyMutations {
		if err := g.df.Validate(); err != nil {
			logging.L().Error("invariant violated after mutation", zap.String("op", g.op), zap.Error(err))
			if errp != nil && *errp == nil {
				*errp = err
			}
		}
	}
}

// stageRow validates a positional row against the columns and returns the
// values converted to each column's element type. Nothing is mutated.
func (df *DataFrame) stageRow(op string, pos int, values []any) ([]any, error) {
	if err := validation.ValidatePosition(pos, df.rows, op); err != nil {
		return nil, err
	}
	if len(df.columns) == 0 {
		return nil, dferrors.NewSchemaMismatchError(op, "dataframe has no columns", nil)
	}
	if err := validation.ValidateLength(len(df.columns), len(values), op, "row values"); err != nil {
		return nil, err
	}

	staged := make([]any, len(values))
	var convErr *multierror.Error
	for i, col := range df.columns {
		v, err := col.Coerce(values[i])
		if err != nil {
			convErr = multierror.Append(convErr, err)
			continue
		}
		staged[i] = v
	}
	if err := convErr.ErrorOrNil(); err != nil {
		return nil, dferrors.NewSchemaMismatchError(op, "row values not convertible to column types", err)
	}
	return staged, nil
}

// RowInsert inserts a row at pos (0 <= pos <= Len) with one value per column
// in registry order. Either every column receives the value or none does.
func (df *DataFrame) RowInsert(pos int, values []any) error {
	return df.rowInsert("RowInsert", pos, values)
}

// AppendRow inserts a row at the end
func (df *DataFrame) AppendRow(values ...any) error {
	return df.rowInsert("AppendRow", df.rows, values)
}

// RowInsertRecord inserts a row given as column name to value. The keys must
// be exactly the column names.
func (df *DataFrame) RowInsertRecord(pos int, record map[string]any) error {
	const op = "RowInsertRecord"
	values := make([]any, len(df.columns))
	var keyErr *multierror.Error
	for i, col := range df.columns {
		v, ok := record[col.Name()]
		if !ok {
			keyErr = multierror.Append(keyErr, dferrors.NewColumnNotFoundError(op, col.Name()))
			continue
		}
		values[i] = v
	}
	extra := make([]string, 0)
	for name := range record {
		if !df.registry.Contains(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		keyErr = multierror.Append(keyErr, dferrors.NewInvalidInputError(op, fmt.Sprintf("unexpected key %q", name)))
	}
	if err := keyErr.ErrorOrNil(); err != nil {
		return dferrors.NewSchemaMismatchError(op, "record keys do not match columns", err)
	}
	return df.rowInsert(op, pos, values)
}

func (df *DataFrame) rowInsert(op string, pos int, values []any) (err error) {
	g, err := df.begin(op)
	if err != nil {
		return err
	}
	defer g.release(&err)

	staged, err := df.stageRow(op, pos, values)
	if err != nil {
		return err
	}

	for i, col := range df.columns {
		if err := col.InsertAny(pos, staged[i]); err != nil {
			return dferrors.NewInternalError(op, err)
		}
		g.record(func() { _ = col.Erase(pos) })
	}
	df.rows++
	g.commit()
	return nil
}

// RowDrop removes the row at pos from every column
func (df *DataFrame) RowDrop(pos int) (err error) {
	const op = "RowDrop"
	g, err := df.begin(op)
	if err != nil {
		return err
	}
	defer g.release(&err)

	if err := validation.ValidateIndex(pos, df.rows, op); err != nil {
		return err
	}

	for _, col := range df.columns {
		old, err := col.GetAny(pos)
		if err != nil {
			return dferrors.NewInternalError(op, err)
		}
		if err := col.Erase(pos); err != nil {
			return dferrors.NewInternalError(op, err)
		}
		g.record(func() { _ = col.InsertAny(pos, old) })
	}
	df.rows--
	g.commit()
	return nil
}

// InsertColumn appends a column and returns its index. The first column of an
// empty frame sets the row count; later columns must match it. A column owned
// by another frame fails with an invalid input error.
func (df *DataFrame) InsertColumn(col ISeries) (idx int, err error) {
	const op = "InsertColumn"
	g, err := df.begin(op)
	if err != nil {
		return -1, err
	}
	defer g.release(&err)

	if col == nil {
		return -1, dferrors.NewInvalidInputError(op, "column is nil")
	}
	if err := validation.ValidateName(df, col.Name(), op); err != nil {
		return -1, err
	}
	if len(df.columns) > 0 {
		if err := validation.ValidateLength(df.rows, col.Len(), op, "column "+col.Name()); err != nil {
			return -1, err
		}
	}

	if err := col.Attach(df); err != nil {
		return -1, err
	}
	g.record(func() { col.Detach(df) })

	idx, err = df.registry.Insert(col.Name())
	if err != nil {
		return -1, err
	}
	df.columns = append(df.columns, col)
	df.rows = col.Len()
	g.commit()
	return idx, nil
}

// DropColumn removes the named column
func (df *DataFrame) DropColumn(name string) error {
	idx, err := df.registry.IndexOf(name)
	if err != nil {
		return dferrors.NewColumnNotFoundError("DropColumn", name)
	}
	return df.dropColumn("DropColumn", idx)
}

// DropIColumn removes the column at position i; higher positions shift down
func (df *DataFrame) DropIColumn(i int) error {
	return df.dropColumn("DropIColumn", i)
}

func (df *DataFrame) dropColumn(op string, i int) (err error) {
	g, err := df.begin(op)
	if err != nil {
		return err
	}
	defer g.release(&err)

	if err := validation.ValidateIndex(i, len(df.columns), op); err != nil {
		return err
	}
	if _, err := df.registry.Remove(i); err != nil {
		return err
	}
	dropped := df.columns[i]
	df.columns = append(df.columns[:i], df.columns[i+1:]...)
	if len(df.columns) == 0 {
		df.rows = 0
	}
	dropped.Detach(df)
	g.commit()
	return nil
}

// RenameColumn changes a column name keeping its position
func (df *DataFrame) RenameColumn(oldName, newName string) error {
	const op = "RenameColumn"
	idx, err := df.registry.IndexOf(oldName)
	if err != nil {
		return dferrors.NewColumnNotFoundError(op, oldName)
	}
	if oldName == newName {
		return nil
	}
	if err := validation.ValidateName(df, newName, op); err != nil {
		return err
	}
	if err := df.registry.Rename(idx, newName); err != nil {
		return err
	}
	df.columns[idx].Rename(newName)
	return nil
}

// Pin marks the raw column buffers as lent out. Until the returned release
// function is called, operations that would resize or remove a column fail
// with a pinned error. Element writes remain allowed.
func (df *DataFrame) Pin() (release func()) {
	df.pins++
	var once sync.Once
	return func() {
		once.Do(func() { df.pins-- })
	}
}

// Pinned reports whether any borrower holds the column buffers
func (df *DataFrame) Pinned() bool {
	return df.pins > 0
}
