package calc

import (
	"fmt"
	"unicode"
)

// CommandKind identifies a calculator key.
type CommandKind uint8

const (
	CmdNone CommandKind = iota
	CmdDigit
	CmdOperator
	CmdEquals
	CmdClear
)

func (k CommandKind) String() string {
	switch k {
	case CmdNone:
		return "none"
	case CmdDigit:
		return "digit"
	case CmdOperator:
		return "operator"
	case CmdEquals:
		return "equals"
	case CmdClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Command is one discrete input delivered by the UI layer.
type Command struct {
	Kind  CommandKind
	Digit uint8
	Op    Operator
}

func DigitCommand(d uint8) Command       { return Command{Kind: CmdDigit, Digit: d} }
func OperatorCommand(op Operator) Command { return Command{Kind: CmdOperator, Op: op} }
func EqualsCommand() Command              { return Command{Kind: CmdEquals} }
func ClearCommand() Command               { return Command{Kind: CmdClear} }

// Label returns the key caption for c, e.g. "7", "+", "=", "C".
func (c Command) Label() string {
	switch c.Kind {
	case CmdDigit:
		return string(rune('0' + c.Digit))
	case CmdOperator:
		return c.Op.Symbol()
	case CmdEquals:
		return "="
	case CmdClear:
		return "C"
	default:
		return ""
	}
}

func (c Command) validate() error {
	switch c.Kind {
	case CmdDigit:
		if c.Digit > 9 {
			return fmt.Errorf("%w: digit %d", ErrInvalidCommand, c.Digit)
		}
	case CmdOperator:
		if !c.Op.Valid() {
			return fmt.Errorf("%w: operator %d", ErrInvalidCommand, c.Op)
		}
	case CmdEquals, CmdClear:
	default:
		return fmt.Errorf("%w: kind %s", ErrInvalidCommand, c.Kind)
	}
	return nil
}

// Apply dispatches c to the matching Press method.
//
// An invalid command returns an error wrapping ErrInvalidCommand and leaves
// the engine unchanged. Evaluation failures are not returned; they are
// reported through LastError.
func (e *Engine) Apply(c Command) error {
	if err := c.validate(); err != nil {
		return err
	}
	switch c.Kind {
	case CmdDigit:
		e.PressDigit(c.Digit)
	case CmdOperator:
		e.PressOperator(c.Op)
	case CmdEquals:
		e.PressEquals()
	case CmdClear:
		e.PressClear()
	}
	return nil
}

// CommandForRune maps a typed character to a command.
func CommandForRune(r rune) (Command, bool) {
	if r >= '0' && r <= '9' {
		return DigitCommand(uint8(r - '0')), true
	}
	switch r {
	case '+':
		return OperatorCommand(OpAdd), true
	case '-':
		return OperatorCommand(OpSubtract), true
	case '*', 'x', 'X':
		return OperatorCommand(OpMultiply), true
	case '/':
		return OperatorCommand(OpDivide), true
	case '=':
		return EqualsCommand(), true
	case 'c', 'C':
		return ClearCommand(), true
	}
	return Command{}, false
}

// ParseCommands converts a key script such as "12+8=" into commands.
//
// Whitespace is skipped.
func ParseCommands(s string) ([]Command, error) {
	var out []Command
	for i, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		c, ok := CommandForRune(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidCommand, r, i)
		}
		out = append(out, c)
	}
	return out, nil
}
