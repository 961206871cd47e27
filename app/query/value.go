package query

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the string form of time.Time cells used by search and by
// string comparisons.
const DateLayout = "2006-01-02 15:04:05"

// IsEmptyOperand reports whether an operand means "no filter": nil, the empty
// string or an empty list.
func IsEmptyOperand(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Stringify renders a cell the way search and string comparisons see it.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(DateLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(DateLayout)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// isNumber reports whether v holds a Go numeric type (strings do not count).
func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// numberOf converts Go numeric types only.
func numberOf(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case float32:
		f = float64(x)
	case float64:
		f = x
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ToNumber is the numeric coercion used by greaterThan, lessThan and between:
// numbers as-is, numeric strings parsed, bools as 0/1, dates as epoch
// milliseconds. Anything else is not a number.
func ToNumber(v any) (float64, bool) {
	if f, ok := numberOf(v); ok {
		return f, true
	}
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case time.Time:
		return float64(x.UnixMilli()), true
	case *time.Time:
		if x == nil {
			return 0, false
		}
		return float64(x.UnixMilli()), true
	}
	return 0, false
}

// asList returns the elements of a slice or array operand.
func asList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, true
}

// Compare orders two non-nil cells: numbers numerically, dates
// chronologically, everything else by string form. In a mixed column numbers
// come first, then dates, then the rest. Returns -1, 0 or 1.
func Compare(a, b any) int {
	af, aNum := numberOf(a)
	bf, bNum := numberOf(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	at, aTime := a.(time.Time)
	bt, bTime := b.(time.Time)
	if aTime && bTime {
		return at.Compare(bt)
	}
	if ra, rb := compareRank(aNum, aTime), compareRank(bNum, bTime); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	return strings.Compare(Stringify(a), Stringify(b))
}

func compareRank(isNumber, isTime bool) int {
	switch {
	case isNumber:
		return 0
	case isTime:
		return 1
	}
	return 2
}

// isNull treats nil and typed nil pointers as missing.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
