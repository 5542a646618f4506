/*
Copyright 2024 Tim St. Pierre
LCM1602 status demo
*/

// Command lcm1602-status keeps the adb device count and the CPU temperature
// on an LCM1602 display.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/tstpierre-tc/lcm1602/internal/board"
	"github.com/tstpierre-tc/lcm1602/internal/config"
	"github.com/tstpierre-tc/lcm1602/internal/status"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	busName := flag.String("bus", "", "I²C bus name, overrides the configuration")
	addr := flag.Uint("addr", 0, "display address, overrides the configuration")
	simulate := flag.Bool("sim", false, "draw a simulated display in the terminal")
	refresh := flag.String("refresh", "", "refresh schedule as a cron spec, overrides the configuration")
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
	if *refresh != "" {
		conf.Status.Refresh = *refresh
	}
	conf.Display.Simulate = conf.Display.Simulate || *simulate
	if err := board.SetupLogging(conf.LogLevel); err != nil {
		log.Fatal(err)
	}

	log.WithFields(log.Fields{
		"addr":    conf.Display.Address,
		"bus":     conf.Display.Bus,
		"refresh": conf.Status.Refresh,
		"sim":     conf.Display.Simulate,
	}).Info("LCM1602 status display starting")

	b, err := board.Open(conf.Display)
	if err != nil {
		log.WithError(err).Error("Terminated abnormally")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	screen := &status.Screen{
		Display:     b.Dev,
		Devices:     &status.DeviceCounter{ADB: conf.Status.ADB},
		ThermalZone: conf.Status.ThermalZone,
		OnRender:    b.Refresh,
	}
	err = screen.Run(ctx, conf.Status.Refresh)
	_ = b.Close()
	if err != nil {
		log.WithError(err).Error("Terminated abnormally")
		os.Exit(1)
	}
	log.Info("Program end")
}
