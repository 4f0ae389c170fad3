package calc

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrMalformedOperand reports an empty or unparsable operand on Equals.
	ErrMalformedOperand = errors.New("malformed operand")
	// ErrDivideByZero reports a zero right operand under OpDivide.
	ErrDivideByZero = errors.New("divide by zero")
	// ErrInvalidCommand reports a command the engine cannot apply.
	ErrInvalidCommand = errors.New("invalid command")
)

// State is the coarse state of the engine, derived from its fields.
type State uint8

const (
	StateIdle State = iota
	StateOperatorPending
	StateEvaluated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOperatorPending:
		return "operator_pending"
	case StateEvaluated:
		return "evaluated"
	default:
		return "unknown"
	}
}

// Engine is a single-operator calculator input state machine.
//
// The zero value is the Idle state. An Engine is not safe for concurrent use;
// see Shared.
type Engine struct {
	left  []byte
	right []byte
	op    Operator

	result    int32
	hasResult bool
	err       error
}

// New returns an engine in the Idle state.
func New() *Engine {
	return &Engine{}
}

// PressDigit appends d to the active operand buffer.
//
// The left buffer is active until an operator is pressed. Any result or error
// is cleared. Values of d outside 0..9 are ignored.
func (e *Engine) PressDigit(d uint8) {
	if d > 9 {
		return
	}
	e.clearEvaluation()
	if e.op == OpNone {
		e.left = append(e.left, '0'+d)
		return
	}
	e.right = append(e.right, '0'+d)
}

// PressOperator sets the pending operator, replacing any previous one.
//
// Operand buffers are kept; a displayed result or error is cleared.
func (e *Engine) PressOperator(op Operator) {
	if !op.Valid() {
		return
	}
	e.clearEvaluation()
	e.op = op
}

// PressEquals evaluates the current operands.
//
// On failure LastError returns an error wrapping ErrMalformedOperand or
// ErrDivideByZero and no result is set. The operand buffers are kept so the
// expression stays visible.
func (e *Engine) PressEquals() {
	e.clearEvaluation()
	v, err := e.evaluate()
	if err != nil {
		e.err = err
		return
	}
	e.result = v
	e.hasResult = true
}

// PressClear resets the engine to the Idle state.
func (e *Engine) PressClear() {
	*e = Engine{}
}

func (e *Engine) clearEvaluation() {
	e.result = 0
	e.hasResult = false
	e.err = nil
}

func (e *Engine) evaluate() (int32, error) {
	if len(e.left) == 0 {
		return 0, fmt.Errorf("%w: left operand is empty", ErrMalformedOperand)
	}
	a, err := parseOperand("left", e.left)
	if err != nil {
		return 0, err
	}
	if e.op == OpNone {
		return a, nil
	}

	if len(e.right) == 0 {
		return 0, fmt.Errorf("%w: right operand is empty", ErrMalformedOperand)
	}
	b, err := parseOperand("right", e.right)
	if err != nil {
		return 0, err
	}
	return e.op.Apply(a, b)
}

func parseOperand(side string, digits []byte) (int32, error) {
	v, err := strconv.ParseInt(string(digits), 10, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, fmt.Errorf("%w: %s operand %q: %v", ErrMalformedOperand, side, digits, err)
	}
	return int32(v), nil
}

// Left returns the left operand buffer.
func (e *Engine) Left() string { return string(e.left) }

// Right returns the right operand buffer.
func (e *Engine) Right() string { return string(e.right) }

// Pending returns the pending operator (OpNone if none).
func (e *Engine) Pending() Operator { return e.op }

// Result returns the last successful evaluation.
func (e *Engine) Result() (int32, bool) { return e.result, e.hasResult }

// LastError returns the last failed evaluation, or nil.
func (e *Engine) LastError() error { return e.err }

// State reports which row of the transition table the engine is in.
func (e *Engine) State() State {
	switch {
	case e.hasResult || e.err != nil:
		return StateEvaluated
	case e.op != OpNone:
		return StateOperatorPending
	default:
		return StateIdle
	}
}

// Display returns the printable fields the UI renders.
func (e *Engine) Display() Display {
	d := Display{
		Left:     string(e.left),
		Operator: e.op.Symbol(),
		Right:    string(e.right),
	}
	switch {
	case e.hasResult:
		d.Result = strconv.FormatInt(int64(e.result), 10)
	case e.err != nil:
		d.Result = errorText(e.err)
		d.Failed = true
	}
	return d
}

func errorText(err error) string {
	switch {
	case errors.Is(err, ErrDivideByZero):
		return ErrDivideByZero.Error()
	case errors.Is(err, ErrMalformedOperand):
		return ErrMalformedOperand.Error()
	default:
		return err.Error()
	}
}
