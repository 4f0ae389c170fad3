package calc

import "strings"

// Display is the read-only view of an Engine.
//
// Result holds the evaluated value or, when Failed is set, the error text.
type Display struct {
	Left     string
	Operator string
	Right    string
	Result   string
	Failed   bool
}

// Evaluated reports whether the display carries a result or an error.
func (d Display) Evaluated() bool { return d.Result != "" }

// Expression joins the operand and operator fields, e.g. "12 + 8".
func (d Display) Expression() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{d.Left, d.Operator, d.Right} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Line renders the whole display on one line, e.g. "12 + 8 = 20".
func (d Display) Line() string {
	expr := d.Expression()
	if !d.Evaluated() {
		return expr
	}
	if expr == "" {
		return "= " + d.Result
	}
	return expr + " = " + d.Result
}
