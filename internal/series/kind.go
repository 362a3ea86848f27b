package series

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// Element is the set of Go types a Series can store.
type Element interface {
	int64 | int32 | float64 | float32 | bool | string
}

// Kind tags the element type of a column so erased columns can be inspected
// without reflection.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt64
	KindInt32
	KindFloat64
	KindFloat32
	KindBool
	KindString
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindInt64:   "int64",
	KindInt32:   "int32",
	KindFloat64: "float64",
	KindFloat32: "float32",
	KindBool:    "bool",
	KindString:  "string",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsNumeric reports whether the kind is an integer or floating point kind.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindInt64, KindInt32, KindFloat64, KindFloat32:
		return true
	default:
		return false
	}
}

// ParseKind resolves a kind from its name. "int" is an alias of int64 and
// "float" of float64.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "int64", "int":
		return KindInt64, nil
	case "int32":
		return KindInt32, nil
	case "float64", "float":
		return KindFloat64, nil
	case "float32":
		return KindFloat32, nil
	case "bool":
		return KindBool, nil
	case "string":
		return KindString, nil
	default:
		return KindInvalid, fmt.Errorf("unknown column kind %q", name)
	}
}

// DataType returns the Arrow type used when exporting the kind.
func (k Kind) DataType() arrow.DataType {
	switch k {
	case KindInt64:
		return arrow.PrimitiveTypes.Int64
	case KindInt32:
		return arrow.PrimitiveTypes.Int32
	case KindFloat64:
		return arrow.PrimitiveTypes.Float64
	case KindFloat32:
		return arrow.PrimitiveTypes.Float32
	case KindBool:
		return arrow.FixedWidthTypes.Boolean
	case KindString:
		return arrow.BinaryTypes.String
	default:
		return arrow.Null
	}
}

// KindFromDataType maps an Arrow type back to a column kind.
func KindFromDataType(dt arrow.DataType) (Kind, error) {
	switch dt.ID() {
	case arrow.INT64:
		return KindInt64, nil
	case arrow.INT32:
		return KindInt32, nil
	case arrow.FLOAT64:
		return KindFloat64, nil
	case arrow.FLOAT32:
		return KindFloat32, nil
	case arrow.BOOL:
		return KindBool, nil
	case arrow.STRING, arrow.LARGE_STRING:
		return KindString, nil
	default:
		return KindInvalid, fmt.Errorf("unsupported arrow type %s", dt)
	}
}

// KindOf returns the kind tag for the element type T.
func KindOf[T Element]() Kind {
	var zero T
	switch any(zero).(type) {
	case int64:
		return KindInt64
	case int32:
		return KindInt32
	case float64:
		return KindFloat64
	case float32:
		return KindFloat32
	case bool:
		return KindBool
	case string:
		return KindString
	default:
		return KindInvalid
	}
}
