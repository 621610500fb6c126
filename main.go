/*
panelpop renders the panel-pop title screen headlessly and writes it to a PNG.

Usage:

	panelpop [config.toml]

Without an argument panelpop.toml is read from the working directory when it
exists, otherwise the built-in defaults are used.
*/
package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/panelpop/engine"
	"github.com/spaghettifunk/panelpop/engine/config"
	"github.com/spaghettifunk/panelpop/engine/core"
	"github.com/spaghettifunk/panelpop/testbed"
)

const defaultConfigPath = "panelpop.toml"

func loadConfig() (*config.Config, error) {
	if len(os.Args) > 1 {
		return config.Load(os.Args[1])
	}
	cfg, err := config.Load(defaultConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		core.LogDebug("no %s found, using defaults", defaultConfigPath)
		return config.Default(), nil
	}
	return cfg, err
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		core.LogFatal("failed to load configuration: %s", err)
	}

	tb := testbed.NewTitleScreen(cfg)

	engine, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		sig := <-sigCh
		core.LogInfo("received %s", sig)
		_ = engine.Shutdown()
		os.Exit(1)
	}()

	if err := engine.Initialize(); err != nil {
		_ = engine.Shutdown()
		core.LogFatal(err.Error())
	}

	// run engine
	runErr := engine.Run()
	if err := errors.Join(runErr, engine.Shutdown()); err != nil {
		core.LogFatal(err.Error())
	}
}
