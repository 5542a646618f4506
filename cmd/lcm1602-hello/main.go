/*
Copyright 2024 Tim St. Pierre
LCM1602 greeting demo
*/

// Command lcm1602-hello shows a greeting on both lines of an LCM1602
// display.
package main

import (
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/tstpierre-tc/lcm1602/internal/board"
	"github.com/tstpierre-tc/lcm1602/internal/config"
)

const greeting = "Line One________________Line Two"

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	busName := flag.String("bus", "", "I²C bus name, overrides the configuration")
	addr := flag.Uint("addr", 0, "display address, overrides the configuration")
	simulate := flag.Bool("sim", false, "draw a simulated display in the terminal")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *busName != "" {
		conf.Display.Bus = *busName
	}
	if *addr != 0 {
		conf.Display.Address = uint16(*addr)
	}
	conf.Display.Simulate = conf.Display.Simulate || *simulate
	if err := board.SetupLogging(conf.LogLevel); err != nil {
		log.Fatal(err)
	}

	log.Info("LCM1602 3V3 serial character LCD demo")
	b, err := board.Open(conf.Display)
	if err != nil {
		log.WithError(err).Error("Terminated abnormally")
		os.Exit(1)
	}
	defer b.Close()

	log.Info("Displaying text")
	if err := b.Dev.DisplayString(greeting); err != nil {
		log.WithError(err).Error("Terminated abnormally")
		_ = b.Close()
		os.Exit(1)
	}
	if err := b.Refresh(); err != nil {
		log.WithError(err).Warn("Drawing simulated display failed")
	}
	log.Info("Program end")
}
