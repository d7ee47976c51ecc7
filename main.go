/*
Demo application driving the separable program pipeline through the
engine package
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima-pipeline/engine"
	"github.com/spaghettifunk/anima-pipeline/engine/core"
	"github.com/spaghettifunk/anima-pipeline/testbed"
)

func main() {
	path := "anima.toml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	config, err := core.LoadConfig(path)
	if err != nil {
		core.LogFatal("failed to load config: %s", err)
	}

	tb := testbed.NewTestGame(config)

	e, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		core.LogError("failed to initialize engine: %s", err)
		_ = e.Shutdown()
		os.Exit(1)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		e.Quit()
	}()

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
