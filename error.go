package jsi

import (
	"fmt"
	"strings"
)

// Error is a script exception caught at the boundary. Value holds the thrown
// value itself; the other fields are read from it when the error is created.
type Error struct {
	Value   Value  // Thrown value, owned by the error
	Name    string // Error name (e.g., "TypeError", "ReferenceError")
	Message string // Error message, or the string form of a non-Error throw
	Cause   string // Error cause
	Stack   string // Stack trace
}

// Error implements the error interface.
func (err *Error) Error() string {
	msg := err.Message
	if err.Name != "" {
		msg = fmt.Sprintf("%s: %s", err.Name, err.Message)
	}
	if err.Cause != "" {
		return fmt.Sprintf("%s (cause: %s)", msg, err.Cause)
	}
	return msg
}

func newError(val Value) *Error {
	err := &Error{Value: val}
	if !val.IsError() {
		err.Message = val.String()
		return err
	}

	obj := val.asObject()
	err.Name = obj.stringProperty("name")
	err.Message = obj.stringProperty("message")
	err.Cause = obj.stringProperty("cause")
	err.Stack = obj.stringProperty("stack")
	return err
}

// CheckErrorParams names what is being checked, for error messages.
// Kind is e.g. "prop" or "argument", Name the path of the value and Target
// the component receiving it (optional).
type CheckErrorParams struct {
	Kind   string
	Name   string
	Target string
}

// CheckError reports a value whose type did not match what a checker expected.
type CheckError struct {
	CheckErrorParams
	Actual   string // type name of the offending value; empty for object mappers
	Expected string
}

// Error implements the error interface.
func (err *CheckError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invalid %s `%s`", err.Kind, err.Name)
	if err.Actual != "" {
		fmt.Fprintf(&b, " of type `%s`", err.Actual)
	}
	if err.Target != "" {
		fmt.Fprintf(&b, " supplied to `%s`", err.Target)
	}
	fmt.Fprintf(&b, ", expected `%s`.", err.Expected)
	return b.String()
}
