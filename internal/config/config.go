/*
Copyright 2024 Tim St. Pierre
YAML configuration for the demo programs
*/
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DisplayConfig describes the panel and how to reach it.
type DisplayConfig struct {
	// Bus is the periph I²C bus name, "" for the first one found.
	Bus string `yaml:"bus"`
	// Address is the 7-bit device address.
	Address uint16 `yaml:"address"`
	Rows    uint8  `yaml:"rows"`
	Cols    uint8  `yaml:"cols"`
	// CommandDelay and CharDelay can only lengthen the driver minimums.
	CommandDelay time.Duration `yaml:"command_delay"`
	CharDelay    time.Duration `yaml:"char_delay"`
	// Simulate replaces the bus with a panel drawn in the terminal.
	Simulate bool `yaml:"simulate"`
}

// StatusConfig drives the status screen.
type StatusConfig struct {
	// Refresh is a cron spec, e.g. "@every 3s".
	Refresh string `yaml:"refresh"`
	// ThermalZone is the sysfs file holding the CPU temperature in m°C.
	ThermalZone string `yaml:"thermal_zone"`
	// ADB is the adb executable used to count devices.
	ADB string `yaml:"adb"`
}

type Config struct {
	// LogLevel is a logrus level name.
	LogLevel string        `yaml:"log_level"`
	Display  DisplayConfig `yaml:"display"`
	Status   StatusConfig  `yaml:"status"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Display: DisplayConfig{
			Address:      0x3E,
			Rows:         2,
			Cols:         16,
			CommandDelay: 10 * time.Millisecond,
			CharDelay:    time.Millisecond,
		},
		Status: StatusConfig{
			Refresh:     "@every 3s",
			ThermalZone: "/sys/class/thermal/thermal_zone0/temp",
			ADB:         "adb",
		},
	}
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Display.Address == 0 {
		c.Display.Address = d.Display.Address
	}
	if c.Display.Rows == 0 {
		c.Display.Rows = d.Display.Rows
	}
	if c.Display.Cols == 0 {
		c.Display.Cols = d.Display.Cols
	}
	if c.Display.CommandDelay <= 0 {
		c.Display.CommandDelay = d.Display.CommandDelay
	}
	if c.Display.CharDelay <= 0 {
		c.Display.CharDelay = d.Display.CharDelay
	}
	if c.Status.Refresh == "" {
		c.Status.Refresh = d.Status.Refresh
	}
	if c.Status.ThermalZone == "" {
		c.Status.ThermalZone = d.Status.ThermalZone
	}
	if c.Status.ADB == "" {
		c.Status.ADB = d.Status.ADB
	}
}

// Load reads the YAML file at path over the defaults. An empty path yields the
// defaults; a path that does not exist is an error.
func Load(path string) (*Config, error) {
	c := DefaultConfig()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.Normalize()
	if c.Display.Address > 0x7F {
		return nil, fmt.Errorf("config: display address %#x is not a 7-bit address", c.Display.Address)
	}
	return c, nil
}
