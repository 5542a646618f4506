/*
Copyright 2024 Tim St. Pierre
Errors returned by the lcm1602 driver
*/
package lcm1602

import "fmt"

// InitializationError is returned by NewI2C when the device does not answer
// at its address or the initial clear fails.
type InitializationError struct {
	Addr uint16
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("lcm1602 %#x: initialization failed: %v", e.Addr, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// CommandError reports a failed instruction write.
type CommandError struct {
	Instruction byte
	Err         error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("lcm1602: command %#02x failed: %v", e.Instruction, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// CursorError reports a failed cursor move. Row and Col are the normalized
// target, which the driver has already recorded.
type CursorError struct {
	Row int
	Col int
	Err error
}

func (e *CursorError) Error() string {
	return fmt.Sprintf("lcm1602: position cursor to row %d col %d: %v", e.Row, e.Col, e.Err)
}

func (e *CursorError) Unwrap() error { return e.Err }

// RenderError reports a write that stopped partway. Index is the character
// being written when it failed and Written the number of characters that
// reached the display. They differ only when the character was written but
// the wrap to the next row failed.
type RenderError struct {
	Index   int
	Written int
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("lcm1602: display string failed at char %d (%d written): %v", e.Index, e.Written, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
