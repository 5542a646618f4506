/*
Copyright 2024 Tim St. Pierre
Demo wiring for the LCM1602 driver
*/

// Package board wires the driver to a real I²C bus or to the simulated panel
// for the demo programs.
package board

import (
	"fmt"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/tstpierre-tc/lcm1602"
	"github.com/tstpierre-tc/lcm1602/internal/config"
	"github.com/tstpierre-tc/lcm1602/sim"
)

// Board owns the bus the display is on.
type Board struct {
	Dev *lcm1602.Dev

	bus  i2c.BusCloser
	term *sim.Terminal
}

// SetupLogging sets the logrus level and sends colored output to stderr.
func SetupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetOutput(colorable.NewColorableStderr())
	log.SetFormatter(&log.TextFormatter{
		ForceColors:   isatty.IsTerminal(os.Stderr.Fd()),
		FullTimestamp: true,
	})
	return nil
}

// Open opens the configured bus and initializes the display on it.
func Open(c config.DisplayConfig) (*Board, error) {
	opts := &lcm1602.Opts{
		I2CAddr:      c.Address,
		Rows:         c.Rows,
		Cols:         c.Cols,
		CommandDelay: c.CommandDelay,
		CharDelay:    c.CharDelay,
	}
	b := &Board{}
	var bus i2c.Bus
	if c.Simulate {
		panel := sim.New(c.Address, int(c.Rows), int(c.Cols))
		b.term = sim.NewTerminal(panel)
		bus = panel
		log.WithField("panel", panel).Info("Using simulated display")
	} else {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("board: host init: %w", err)
		}
		bc, err := i2creg.Open(c.Bus)
		if err != nil {
			return nil, fmt.Errorf("board: open I²C %q: %w", c.Bus, err)
		}
		b.bus = bc
		bus = bc
	}
	dev, err := lcm1602.NewI2C(bus, opts)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.Dev = dev
	if err := dev.Setup(); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, b.Refresh()
}

// Refresh redraws the simulated panel. It does nothing on real hardware.
func (b *Board) Refresh() error {
	if b.term == nil {
		return nil
	}
	return b.term.Refresh()
}

// Close releases the bus. The display keeps showing its last content.
func (b *Board) Close() error {
	if b.term != nil {
		return b.term.Halt()
	}
	if b.bus != nil {
		return b.bus.Close()
	}
	return nil
}
