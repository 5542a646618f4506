/*
Copyright 2024 Tim St. Pierre
Status screen for the LCM1602 demos
*/

// Package status renders a periodic status screen: the number of attached
// adb devices and the CPU temperature.
package status

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Display is the part of the driver the status screen needs.
type Display interface {
	PositionCursor(row, col int) error
	DisplayString(text string) error
	Cols() int
}

// DeviceCounter counts devices listed by `adb devices` and remembers the
// highest count seen.
type DeviceCounter struct {
	ADB string

	mu  sync.Mutex
	max int
	// output runs the command; replaced in tests.
	output func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Count returns the current and highest device count.
func (c *DeviceCounter) Count(ctx context.Context) (n, max int, err error) {
	output := c.output
	if output == nil {
		output = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		}
	}
	out, err := output(ctx, c.ADB, "devices")
	if err != nil {
		return 0, 0, fmt.Errorf("status: %s devices: %w", c.ADB, err)
	}
	n = countDevices(out)
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > c.max {
		c.max = n
	}
	return n, c.max, nil
}

// countDevices counts the non-empty lines after the "List of devices" header.
func countDevices(out []byte) int {
	n := 0
	for _, line := range bytes.Split(out, []byte("\n")) {
		if len(bytes.TrimSpace(line)) != 0 {
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return n - 1
}

// ReadTemperature reads a sysfs thermal zone and returns degrees Celsius.
func ReadTemperature(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("status: %w", err)
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("status: parse %s: %w", path, err)
	}
	return float64(milli) / 1000, nil
}

// Screen draws the status lines on a display.
type Screen struct {
	Display     Display
	Devices     *DeviceCounter
	ThermalZone string
	// OnRender, if set, is called after each successful render.
	OnRender func() error
}

// Render writes both status lines. Source errors are shown on the display;
// display errors are returned.
func (s *Screen) Render(ctx context.Context) error {
	top := "no adb"
	if n, max, err := s.Devices.Count(ctx); err != nil {
		log.WithError(err).Warn("Counting devices failed")
	} else {
		top = fmt.Sprintf("%d/%d devices", n, max)
	}
	bottom := "Temp: n/a"
	if t, err := ReadTemperature(s.ThermalZone); err != nil {
		log.WithError(err).Warn("Reading temperature failed")
	} else {
		bottom = fmt.Sprintf("Temp: %.1fC", t)
	}
	for row, text := range []string{top, bottom} {
		if err := s.Display.PositionCursor(row, 0); err != nil {
			return err
		}
		if err := s.Display.DisplayString(pad(text, s.Display.Cols())); err != nil {
			return err
		}
	}
	log.WithFields(log.Fields{"top": top, "bottom": bottom}).Debug("Status rendered")
	if s.OnRender != nil {
		return s.OnRender()
	}
	return nil
}

// pad fills text with spaces, or cuts it, to exactly cols characters so
// stale characters from a longer previous line are overwritten.
func pad(text string, cols int) string {
	r := []rune(text)
	if len(r) >= cols {
		return string(r[:cols])
	}
	return text + strings.Repeat(" ", cols-len(r))
}

// Run renders once, then on every tick of the cron spec until ctx is done or
// a render fails. Overlapping ticks are skipped.
func (s *Screen) Run(ctx context.Context, spec string) error {
	if err := s.Render(ctx); err != nil {
		return err
	}
	logger := cron.PrintfLogger(log.StandardLogger())
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	errc := make(chan error, 1)
	if _, err := c.AddFunc(spec, func() {
		if err := s.Render(ctx); err != nil {
			select {
			case errc <- err:
			default:
			}
		}
	}); err != nil {
		return fmt.Errorf("status: refresh %q: %w", spec, err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		return err
	}
}
