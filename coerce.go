package osc

import "fmt"

// isNumericType reports whether the type code names one of the four
// numeric OSC types.
func isNumericType(t rune) bool {
	switch t {
	case 'i', 'f', 'h', 'd':
		return true
	}
	return false
}

// isStringType reports whether the type code names one of the two
// string-like OSC types.
func isStringType(t rune) bool {
	switch t {
	case 's', 'S':
		return true
	}
	return false
}

// CanCoerce reports whether an argument of type `from` can be coerced
// to an argument of type `to`.
func CanCoerce(to, from rune) bool {
	if to == from {
		return true
	}
	if isNumericType(to) && isNumericType(from) {
		return true
	}
	if isStringType(to) && isStringType(from) {
		return true
	}
	return false
}

// CanCoerceSpec reports whether every type in `from` can be coerced to
// the type at the same position in `to`. Both typespecs must have the
// same length (not counting a leading comma; callers pass the bare
// type-character strings).
func CanCoerceSpec(to, from string) bool {
	if len(to) != len(from) {
		return false
	}
	for i := range to {
		if !CanCoerce(rune(to[i]), rune(from[i])) {
			return false
		}
	}
	return true
}

// hiresVal extracts the numeric value of a numeric Argument as the
// widest native precision Go offers: float64.
func hiresVal(a Argument) (float64, error) {
	switch v := a.(type) {
	case *Int32:
		return float64(*v), nil
	case *Int64:
		return float64(*v), nil
	case *Float32:
		return float64(*v), nil
	case *Float64:
		return float64(*v), nil
	default:
		return 0, fmt.Errorf("hires value requested of non-numeric argument %T", a)
	}
}

// Coerce converts `from` (an Argument of type fromType) into an
// Argument of type toType, following the same string<->symbol and
// numeric<->numeric rules as CanCoerce.
func Coerce(toType rune, from Argument) (Argument, error) {
	fromType := from.TypeTag()
	if toType == fromType {
		return from, nil
	}

	if isStringType(toType) && isStringType(fromType) {
		var s string
		switch v := from.(type) {
		case *String:
			s = string(*v)
		case *Symbol:
			s = string(*v)
		default:
			return nil, fmt.Errorf("coerce: %c is not a string type", fromType)
		}
		if toType == 's' {
			r := String(s)
			return &r, nil
		}
		r := Symbol(s)
		return &r, nil
	}

	if isNumericType(toType) && isNumericType(fromType) {
		v, err := hiresVal(from)
		if err != nil {
			return nil, err
		}
		switch toType {
		case 'i':
			r := Int32(int32(v))
			return &r, nil
		case 'h':
			r := Int64(int64(v))
			return &r, nil
		case 'f':
			r := Float32(float32(v))
			return &r, nil
		case 'd':
			r := Float64(v)
			return &r, nil
		}
	}

	return nil, fmt.Errorf("cannot coerce %c -> %c", fromType, toType)
}
