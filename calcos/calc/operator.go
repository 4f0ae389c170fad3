package calc

import (
	"fmt"
	"math"
)

// Operator is the arithmetic operation applied on Equals.
type Operator uint8

const (
	OpNone Operator = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

// Symbol returns the display symbol ("" for OpNone).
func (op Operator) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	default:
		return ""
	}
}

func (op Operator) String() string {
	switch op {
	case OpNone:
		return "none"
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	default:
		return "unknown"
	}
}

// Valid reports whether op is one of the four arithmetic operators.
func (op Operator) Valid() bool {
	return op >= OpAdd && op <= OpDivide
}

// Apply evaluates a op b.
//
// Division truncates toward zero. Results outside the int32 range are reported
// as ErrMalformedOperand.
func (op Operator) Apply(a, b int32) (int32, error) {
	x, y := int64(a), int64(b)

	var v int64
	switch op {
	case OpAdd:
		v = x + y
	case OpSubtract:
		v = x - y
	case OpMultiply:
		v = x * y
	case OpDivide:
		if y == 0 {
			return 0, ErrDivideByZero
		}
		v = x / y
	default:
		return 0, fmt.Errorf("%w: operator %d", ErrInvalidCommand, op)
	}

	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d %s %d overflows int32", ErrMalformedOperand, a, op.Symbol(), b)
	}
	return int32(v), nil
}
