/*
Copyright 2024 Tim St. Pierre
Controls an LCM1602 character LCD with an on-board I²C controller
(AiP31068 / ST7032 style control byte protocol)
*/
package lcm1602

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/mmr"
)

const (
	// Commands
	CMD_Clear_Display        = 0x01
	CMD_Return_Home          = 0x02
	CMD_Entry_Mode           = 0x04
	CMD_Display_Control      = 0x08
	CMD_Cursor_Display_Shift = 0x10
	CMD_Function_Set         = 0x20
	CMD_DDRAM_Set            = 0x80

	// Options
	OPT_Increment      = 0x02 // CMD_Entry_Mode 0 = right to left
	OPT_Display_Shift  = 0x01 // CMD_Entry_Mode
	OPT_Enable_Display = 0x04 // CMD_Display_Control
	OPT_Enable_Cursor  = 0x02 // CMD_Display_Control
	OPT_Enable_Blink   = 0x01 // CMD_Display_Control
	OPT_Shift_Display  = 0x08 // CMD_Cursor_Display_Shift 0 = cursor
	OPT_Shift_Right    = 0x04 // CMD_Cursor_Display_Shift 0 = left
	OPT_2_Lines        = 0x08 // CMD_Function_Set 0 = 1 line
	OPT_5x11_Dots      = 0x04 // CMD_Function_Set 0 = 5x8 dots

	// Control bytes. Co (bit 7) set means another control byte follows the
	// next byte, RS (bit 6) selects data over command.
	CTRL_Command = 0x80
	CTRL_Data    = 0xC0

	// DDRAM row offsets in 2-line mode
	rowOffset1 = 0x00
	rowOffset2 = 0x40
)

// Minimum settling times after a transaction.
const (
	CommandDelay = 10 * time.Millisecond
	CharDelay    = 1 * time.Millisecond
)

// sleep is replaced in tests.
var sleep = time.Sleep

type Dev struct {
	mu sync.Mutex

	c    mmr.Dev8
	addr uint16
	rows int
	cols int

	commandDelay time.Duration
	charDelay    time.Duration

	row int
	col int
}

func (d *Dev) String() string {
	return fmt.Sprintf("lcm1602{%s}", d.c.Conn)
}

// NewI2C returns a new device that communicates over I²C.
//
// Use default options if nil is used. The bus is borrowed and is never
// closed by the driver, so several displays can share it.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr, err := opts.i2cAddr()
	if err != nil {
		return nil, fmt.Errorf("lcm1602 %#x: %v", opts.I2CAddr, err)
	}
	rows, cols, err := opts.geometry()
	if err != nil {
		return nil, fmt.Errorf("lcm1602 %#x: %v", addr, err)
	}
	return makeDev(&i2c.Dev{Bus: b, Addr: addr}, addr, rows, cols, opts)
}

func makeDev(c conn.Conn, addr uint16, rows, cols int, opts *Opts) (*Dev, error) {
	d := &Dev{
		c:            mmr.Dev8{Conn: c, Order: binary.LittleEndian},
		addr:         addr,
		rows:         rows,
		cols:         cols,
		commandDelay: atLeast(opts.CommandDelay, CommandDelay),
		charDelay:    atLeast(opts.CharDelay, CharDelay),
	}
	logger := log.WithField("addr", fmt.Sprintf("%#x", addr))
	logger.Info("Initializing LCM1602")

	// Presence probe. Host buses skip empty transactions, so read one byte.
	var probe [1]byte
	if err := c.Tx(nil, probe[:]); err != nil {
		logger.WithError(err).Error("Device not found")
		return nil, &InitializationError{Addr: addr, Err: err}
	}
	logger.Debug("Device found")

	if err := d.command(CMD_Clear_Display); err != nil {
		logger.WithError(err).Error("Initialization failed")
		return nil, &InitializationError{Addr: addr, Err: err}
	}
	logger.Info("Initialization complete")
	return d, nil
}

func atLeast(v, min time.Duration) time.Duration {
	if v < min {
		return min
	}
	return v
}

// Rows returns the number of display rows.
func (d *Dev) Rows() int {
	return d.rows
}

// Cols returns the number of display columns.
func (d *Dev) Cols() int {
	return d.cols
}

// Cursor returns the recorded cursor position.
func (d *Dev) Cursor() (row, col int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.row, d.col
}

// Command sends a raw instruction to the controller.
func (d *Dev) Command(instruction byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.command(instruction)
}

// Setup puts the display in 2-line mode, left to right entry, display and
// cursor on, and moves the cursor home.
func (d *Dev) Setup() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	function := byte(CMD_Function_Set)
	if d.rows > 1 {
		function |= OPT_2_Lines
	}
	for _, instruction := range []byte{
		function,
		CMD_Entry_Mode | OPT_Increment,
		CMD_Display_Control | OPT_Enable_Display | OPT_Enable_Cursor,
	} {
		if err := d.command(instruction); err != nil {
			return err
		}
	}
	return d.positionCursor(0, 0)
}

// Clear blanks every cell and moves the cursor home.
func (d *Dev) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.command(CMD_Clear_Display); err != nil {
		return err
	}
	d.row, d.col = 0, 0
	return nil
}

// Home moves the cursor home and undoes any display shift.
func (d *Dev) Home() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.command(CMD_Return_Home); err != nil {
		return err
	}
	d.row, d.col = 0, 0
	return nil
}

// Halt clears the display and turns it off. The bus is left open.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.command(CMD_Clear_Display); err != nil {
		return err
	}
	d.row, d.col = 0, 0
	return d.command(CMD_Display_Control)
}

func (d *Dev) SetEntryMode(leftToRight, shiftDisplay bool) error {
	option := byte(CMD_Entry_Mode)
	if leftToRight {
		option |= OPT_Increment
	}
	if shiftDisplay {
		option |= OPT_Display_Shift
	}
	return d.Command(option)
}

func (d *Dev) SetDisplayControl(display, cursor, blink bool) error {
	option := byte(CMD_Display_Control)
	if display {
		option |= OPT_Enable_Display
	}
	if cursor {
		option |= OPT_Enable_Cursor
	}
	if blink {
		option |= OPT_Enable_Blink
	}
	return d.Command(option)
}

// Shift moves the cursor, or the whole display, one cell. The recorded cursor
// position is not changed.
func (d *Dev) Shift(display, right bool) error {
	option := byte(CMD_Cursor_Display_Shift)
	if display {
		option |= OPT_Shift_Display
	}
	if right {
		option |= OPT_Shift_Right
	}
	return d.Command(option)
}

func (d *Dev) SetFunction(twoLines, tallFont bool) error {
	option := byte(CMD_Function_Set)
	if twoLines {
		option |= OPT_2_Lines
	}
	if tallFont {
		option |= OPT_5x11_Dots
	}
	return d.Command(option)
}

// PositionCursor moves the cursor to row, col. Both are taken modulo the
// display geometry so every integer is accepted, including negative values.
//
// The recorded position is updated before the command is sent and stays
// updated when the write fails.
func (d *Dev) PositionCursor(row, col int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.positionCursor(row, col)
}

// DisplayString writes text at the cursor, one character per transaction.
// After the last column the cursor wraps to the start of the next row, and
// from the last row back to the first.
//
// Each rune is sent as its low byte. On failure the characters already sent
// stay on the display and the returned *RenderError reports how many there
// were.
func (d *Dev) DisplayString(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	log.WithField("addr", fmt.Sprintf("%#x", d.addr)).Debugf("Displaying string: %q", text)
	i := 0
	for _, r := range text {
		if err := d.writeChar(i, byte(r)); err != nil {
			return err
		}
		i++
	}
	return nil
}

// Write implements io.Writer. Bytes go to the display unchanged.
func (d *Dev) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, c := range p {
		if err := d.writeChar(i, c); err != nil {
			return err.(*RenderError).Written, err
		}
	}
	return len(p), nil
}

func (d *Dev) positionCursor(row, col int) error {
	row = mod(row, d.rows)
	col = mod(col, d.cols)
	address := byte(CMD_DDRAM_Set) | (d.rowOffset(row) + byte(col))
	log.WithFields(log.Fields{"row": row, "col": col}).Debug("Positioning cursor")
	d.row, d.col = row, col
	if err := d.command(address); err != nil {
		return &CursorError{Row: row, Col: col, Err: err}
	}
	return nil
}

// rowOffset follows the HD44780 layout: rows 3 and 4 continue rows 1 and 2.
func (d *Dev) rowOffset(row int) byte {
	switch row {
	case 1:
		return rowOffset2
	case 2:
		return rowOffset1 + byte(d.cols)
	case 3:
		return rowOffset2 + byte(d.cols)
	}
	return rowOffset1
}

// writeChar sends the i-th character of a run and advances the cursor.
func (d *Dev) writeChar(i int, c byte) error {
	log.WithFields(log.Fields{"row": d.row, "col": d.col}).Debugf("Writing char[%d] %#x", i, c)
	if err := d.c.WriteUint8(CTRL_Data, c); err != nil {
		return &RenderError{Index: i, Written: i, Err: err}
	}
	sleep(d.charDelay)
	d.col++
	if d.col >= d.cols {
		if err := d.positionCursor(d.row+1, 0); err != nil {
			return &RenderError{Index: i, Written: i + 1, Err: err}
		}
	}
	return nil
}

func (d *Dev) command(instruction byte) error {
	log.WithField("instruction", fmt.Sprintf("%#x", instruction)).Debug("Sending instruction")
	if err := d.c.WriteUint8(CTRL_Command, instruction); err != nil {
		return &CommandError{Instruction: instruction, Err: err}
	}
	sleep(d.commandDelay)
	return nil
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

var _ conn.Resource = &Dev{}
