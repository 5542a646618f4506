/*
Copyright 2024 Tim St. Pierre
Options for lcm1602 character display
*/
package lcm1602

import (
	"errors"
	"fmt"
	"time"
)

// DefaultAddr is the fixed address of the LCM1602 controller.
const DefaultAddr = 0x3E

type Opts struct {
	// The I²C slave address
	I2CAddr uint16
	// Display geometry. Rows may be 1 to 4, Cols 1 to 40.
	Rows uint8
	Cols uint8
	// Settling times. Values below CommandDelay and CharDelay are raised to
	// them.
	CommandDelay time.Duration
	CharDelay    time.Duration
}

var DefaultOpts = Opts{
	I2CAddr:      DefaultAddr,
	Rows:         2,
	Cols:         16,
	CommandDelay: CommandDelay,
	CharDelay:    CharDelay,
}

func (o *Opts) i2cAddr() (uint16, error) {
	switch {
	case o.I2CAddr == 0:
		// Default address.
		return DefaultAddr, nil
	case o.I2CAddr > 0x7F:
		return 0, errors.New("given address is not a 7-bit address")
	default:
		return o.I2CAddr, nil
	}
}

func (o *Opts) geometry() (rows, cols int, err error) {
	rows, cols = int(o.Rows), int(o.Cols)
	if rows == 0 {
		rows = int(DefaultOpts.Rows)
	}
	if cols == 0 {
		cols = int(DefaultOpts.Cols)
	}
	if rows > 4 {
		return 0, 0, fmt.Errorf("device does not support %d lines", rows)
	}
	// Rows 3 and 4 sit after rows 1 and 2 in the same 40 cell DDRAM lines.
	if cols > 40 || (rows > 2 && cols > 20) {
		return 0, 0, fmt.Errorf("device does not support %d cols on %d lines", cols, rows)
	}
	return rows, cols, nil
}
