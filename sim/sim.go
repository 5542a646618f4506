/*
Copyright 2024 Tim St. Pierre
Simulated LCM1602 panel
*/

// Package sim implements an i2c.Bus that behaves like an LCM1602 character
// LCD. It decodes the control byte protocol into a DDRAM model so the screen
// content can be inspected or drawn in a terminal.
//
// Useful for running the demos without the hardware.
package sim

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	ctrlContinue = 0x80 // Co
	ctrlData     = 0x40 // RS

	lineLength = 0x28
	line2Start = 0x40
	ddramSize  = 0x80
)

// ErrNoDevice is returned for transactions to any other address.
var ErrNoDevice = errors.New("sim: no device at address")

// Panel is a simulated display answering at a single address.
type Panel struct {
	mu sync.Mutex

	addr uint16
	rows int
	cols int

	ddram     [ddramSize]byte
	ac        int
	increment bool
	autoShift bool
	shift     int
	twoLines  bool
	displayOn bool
	cursorOn  bool
	blinkOn   bool

	instructions []byte
}

// New returns a powered up panel: blank, display off, one line mode.
func New(addr uint16, rows, cols int) *Panel {
	p := &Panel{addr: addr, rows: rows, cols: cols}
	p.clear()
	return p
}

func (p *Panel) String() string {
	return fmt.Sprintf("sim{%#x %dx%d}", p.addr, p.cols, p.rows)
}

// Tx implements i2c.Bus.
func (p *Panel) Tx(addr uint16, w, r []byte) error {
	if addr != p.addr {
		return ErrNoDevice
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	// Reads return the busy flag and address counter; never busy.
	for i := range r {
		r[i] = byte(p.ac) & 0x7F
	}
	for i := 0; i < len(w); {
		control := w[i]
		i++
		if i >= len(w) {
			break
		}
		if control&ctrlContinue != 0 {
			p.handle(control&ctrlData != 0, w[i])
			i++
			continue
		}
		for ; i < len(w); i++ {
			p.handle(control&ctrlData != 0, w[i])
		}
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (p *Panel) SetSpeed(f physic.Frequency) error {
	return nil
}

// Instructions returns every command byte received, in order.
func (p *Panel) Instructions() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.instructions...)
}

// Line returns the visible characters of row, ignoring whether the display
// is on.
func (p *Panel) Line(row int) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.line(row)
}

// DisplayOn reports the display, cursor and blink flags.
func (p *Panel) DisplayOn() (display, cursor, blink bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.displayOn, p.cursorOn, p.blinkOn
}

// Render draws the panel in a frame.
func (p *Panel) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var b strings.Builder
	border := "+" + strings.Repeat("-", p.cols) + "+\n"
	b.WriteString(border)
	for row := 0; row < p.rows; row++ {
		text := strings.Repeat(" ", p.cols)
		if p.displayOn {
			text = p.line(row)
		}
		b.WriteString("|" + text + "|\n")
	}
	b.WriteString(border)
	_, err := io.WriteString(w, b.String())
	return err
}

func (p *Panel) line(row int) string {
	base := p.rowBase(row)
	out := make([]byte, p.cols)
	for c := range out {
		ch := p.ddram[base+mod(c-p.shift, lineLength)]
		if ch < 0x20 || ch > 0x7E {
			ch = '?'
		}
		out[c] = ch
	}
	return string(out)
}

func (p *Panel) rowBase(row int) int {
	switch row {
	case 1:
		return line2Start
	case 2:
		return p.cols
	case 3:
		return line2Start + p.cols
	}
	return 0
}

func (p *Panel) handle(data bool, b byte) {
	if data {
		log.Debugf("sim: data %#02x at %#02x", b, p.ac)
		p.ddram[p.ac] = b
		if p.autoShift {
			p.shiftDisplay(!p.increment)
		}
		p.advance(p.increment)
		return
	}
	p.instructions = append(p.instructions, b)
	log.Debugf("sim: instruction %#02x", b)
	switch {
	case b&0x80 != 0:
		p.ac = p.valid(int(b & 0x7F))
	case b&0x40 != 0:
		// CGRAM address, custom characters are not modelled.
	case b&0x20 != 0:
		p.twoLines = b&0x08 != 0
		p.ac = p.valid(p.ac)
	case b&0x10 != 0:
		right := b&0x04 != 0
		if b&0x08 != 0 {
			p.shiftDisplay(right)
		} else {
			p.advance(right)
		}
	case b&0x08 != 0:
		p.displayOn = b&0x04 != 0
		p.cursorOn = b&0x02 != 0
		p.blinkOn = b&0x01 != 0
	case b&0x04 != 0:
		p.increment = b&0x02 != 0
		p.autoShift = b&0x01 != 0
	case b&0x02 != 0:
		p.ac = 0
		p.shift = 0
	case b&0x01 != 0:
		p.clear()
	}
}

func (p *Panel) clear() {
	for i := range p.ddram {
		p.ddram[i] = ' '
	}
	p.ac = 0
	p.shift = 0
	p.increment = true
}

func (p *Panel) shiftDisplay(right bool) {
	if right {
		p.shift++
	} else {
		p.shift--
	}
	p.shift = mod(p.shift, lineLength)
}

// valid folds an address into the DDRAM the controller has in the current
// line mode: 0x00-0x4F, or 0x00-0x27 and 0x40-0x67 in 2-line mode.
func (p *Panel) valid(a int) int {
	if !p.twoLines {
		return a % (2 * lineLength)
	}
	return a&line2Start | (a&0x3F)%lineLength
}

// advance moves the address counter the way the controller does: in 2-line
// mode the end of one line continues at the start of the other.
func (p *Panel) advance(forward bool) {
	if !p.twoLines {
		if forward {
			p.ac = (p.ac + 1) % (2 * lineLength)
		} else {
			p.ac = mod(p.ac-1, 2*lineLength)
		}
		return
	}
	switch {
	case forward && p.ac == lineLength-1:
		p.ac = line2Start
	case forward && p.ac == line2Start+lineLength-1:
		p.ac = 0
	case forward:
		p.ac++
	case p.ac == 0:
		p.ac = line2Start + lineLength - 1
	case p.ac == line2Start:
		p.ac = lineLength - 1
	default:
		p.ac--
	}
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

var _ i2c.Bus = &Panel{}
