// Package common provides shared value conversion utilities used by typed
// columns, row insertion and the I/O readers.
package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	trueStr  = "true"
	falseStr = "false"
)

// TypeConverter provides common type conversion utilities.
type TypeConverter struct{}

// NewTypeConverter creates a new TypeConverter instance.
func NewTypeConverter() *TypeConverter {
	return &TypeConverter{}
}

// SafeInt64ToInt32 safely converts int64 to int32, checking for overflow.
func (tc *TypeConverter) SafeInt64ToInt32(value int64) (int32, error) {
	if value > math.MaxInt32 || value < math.MinInt32 {
		return 0, fmt.Errorf("int64 value %d overflows int32 range", value)
	}
	return int32(value), nil
}

// SafeFloat64ToFloat32 safely converts float64 to float32, checking for overflow.
func (tc *TypeConverter) SafeFloat64ToFloat32(value float64) (float32, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return float32(value), nil // Preserve special values
	}
	if value > math.MaxFloat32 || value < -math.MaxFloat32 {
		return 0, fmt.Errorf("float64 value %g overflows float32 range", value)
	}
	return float32(value), nil
}

// ToInt64 converts integers, integral floats and numeric strings to int64.
// Booleans and fractional floats are rejected.
func (tc *TypeConverter) ToInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("uint value %d overflows int64 range", v)
		}
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("uint64 value %d overflows int64 range", v)
		}
		return int64(v), nil
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as int64", v)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to int64", tc.GetTypeName(value))
	}
}

func floatToInt64(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("float value %g is not integral", v)
	}
	if v >= math.MaxInt64 || v < math.MinInt64 {
		return 0, fmt.Errorf("float value %g overflows int64 range", v)
	}
	return int64(v), nil
}

// ToInt32 converts like ToInt64 and additionally checks the int32 range.
func (tc *TypeConverter) ToInt32(value interface{}) (int32, error) {
	v, err := tc.ToInt64(value)
	if err != nil {
		return 0, err
	}
	return tc.SafeInt64ToInt32(v)
}

// ToFloat64 converts numeric types and numeric strings to float64.
func (tc *TypeConverter) ToFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as float64", v)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to float64", tc.GetTypeName(value))
	}
}

// ToFloat32 converts like ToFloat64 and additionally checks the float32 range.
func (tc *TypeConverter) ToFloat32(value interface{}) (float32, error) {
	v, err := tc.ToFloat64(value)
	if err != nil {
		return 0, err
	}
	return tc.SafeFloat64ToFloat32(v)
}

// ToString converts various types to string.
func (tc *TypeConverter) ToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool converts booleans and the strings "true"/"false" (case-insensitive).
// Numbers are rejected so that a bool column never silently absorbs counts.
func (tc *TypeConverter) ToBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case trueStr:
			return true, nil
		case falseStr:
			return false, nil
		}
		return false, fmt.Errorf("cannot parse %q as bool", v)
	default:
		return false, fmt.Errorf("cannot convert %s to bool", tc.GetTypeName(value))
	}
}

// IsBoolString reports whether s spells a boolean literal.
func (tc *TypeConverter) IsBoolString(s string) bool {
	lower := strings.ToLower(s)
	return lower == trueStr || lower == falseStr
}

// GetTypeName returns the type name of a value.
func (tc *TypeConverter) GetTypeName(value interface{}) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}

// Default converter instance for convenience.
var defaultConverter = NewTypeConverter()

// Convenient functions using the default converter

// SafeInt64ToInt32 safely converts int64 to int32 using the default converter.
func SafeInt64ToInt32(value int64) (int32, error) {
	return defaultConverter.SafeInt64ToInt32(value)
}

// SafeFloat64ToFloat32 safely converts float64 to float32 using the default converter.
func SafeFloat64ToFloat32(value float64) (float32, error) {
	return defaultConverter.SafeFloat64ToFloat32(value)
}

// ToInt64 converts a value to int64 using the default converter.
func ToInt64(value interface{}) (int64, error) {
	return defaultConverter.ToInt64(value)
}

// ToInt32 converts a value to int32 using the default converter.
func ToInt32(value interface{}) (int32, error) {
	return defaultConverter.ToInt32(value)
}

// ToFloat64 converts a value to float64 using the default converter.
func ToFloat64(value interface{}) (float64, error) {
	return defaultConverter.ToFloat64(value)
}

// ToFloat32 converts a value to float32 using the default converter.
func ToFloat32(value interface{}) (float32, error) {
	return defaultConverter.ToFloat32(value)
}

// ToString converts a value to string using the default converter.
func ToString(value interface{}) string {
	return defaultConverter.ToString(value)
}

// ToBool converts a value to bool using the default converter.
func ToBool(value interface{}) (bool, error) {
	return defaultConverter.ToBool(value)
}

// IsBoolString reports whether s spells a boolean literal.
func IsBoolString(s string) bool {
	return defaultConverter.IsBoolString(s)
}

// GetTypeName returns the type name using the default converter.
func GetTypeName(value interface{}) string {
	return defaultConverter.GetTypeName(value)
}
