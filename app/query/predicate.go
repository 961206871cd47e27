package query

import (
	"strings"
	"time"
)

// Evaluate tests one field value against operator and operand.
//
// A missing field only matches a missing operand under equals (or a list
// holding a missing value under in). Malformed operands never match.
func Evaluate(fieldValue any, op Operator, operand any) bool {
	if isNull(fieldValue) {
		switch op {
		case OpEquals:
			return isNull(operand)
		case OpIn:
			list, ok := asList(operand)
			if !ok {
				return false
			}
			for _, item := range list {
				if isNull(item) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}

	switch op {
	case OpEquals:
		return valuesEqual(fieldValue, operand)
	case OpContains:
		return strings.Contains(strings.ToLower(Stringify(fieldValue)), strings.ToLower(Stringify(operand)))
	case OpStartsWith:
		return strings.HasPrefix(strings.ToLower(Stringify(fieldValue)), strings.ToLower(Stringify(operand)))
	case OpEndsWith:
		return strings.HasSuffix(strings.ToLower(Stringify(fieldValue)), strings.ToLower(Stringify(operand)))
	case OpGreaterThan:
		fv, ok1 := ToNumber(fieldValue)
		ov, ok2 := ToNumber(operand)
		return ok1 && ok2 && fv > ov
	case OpLessThan:
		fv, ok1 := ToNumber(fieldValue)
		ov, ok2 := ToNumber(operand)
		return ok1 && ok2 && fv < ov
	case OpIn:
		list, ok := asList(operand)
		if !ok {
			return false
		}
		for _, item := range list {
			if valuesEqual(fieldValue, item) {
				return true
			}
		}
		return false
	case OpBetween:
		bounds, ok := asList(operand)
		if !ok || len(bounds) != 2 {
			return false
		}
		fv, ok := ToNumber(fieldValue)
		if !ok {
			return false
		}
		lo, ok1 := ToNumber(bounds[0])
		hi, ok2 := ToNumber(bounds[1])
		return ok1 && ok2 && fv >= lo && fv <= hi
	default:
		return false
	}
}

// valuesEqual is exact equality: numbers numerically, dates by instant,
// everything else by string form without any case folding or trimming.
func valuesEqual(a, b any) bool {
	if isNull(a) || isNull(b) {
		return isNull(a) && isNull(b)
	}
	if isNumber(a) && isNumber(b) {
		af, ok1 := numberOf(a)
		bf, ok2 := numberOf(b)
		return ok1 && ok2 && af == bf
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Equal(bt)
		}
	}
	return Stringify(a) == Stringify(b)
}
