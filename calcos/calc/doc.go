// Package calc implements the calculator input engine.
//
// Digits accumulate into a left operand until an operator is pressed, then into
// the right operand. Equals parses both operands as int32 and applies the single
// pending operator; Clear returns to Idle. Evaluation errors are kept in the
// engine and shown on the display instead of being returned.
package calc
