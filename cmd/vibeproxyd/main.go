// Package main is the entry point for the vibeproxyd tray application.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/KooshaPari/vibeproxy/internal/config"
	"github.com/KooshaPari/vibeproxy/internal/logging"
	"github.com/KooshaPari/vibeproxy/internal/server"
	"github.com/KooshaPari/vibeproxy/internal/tray"
)

func main() {
	foreground := flag.Bool("foreground", false, "Run without a system tray (for development)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if err := logging.Init(logging.Config{Debug: *debug, Console: true}); err != nil {
		os.Exit(1)
	}

	store, err := config.NewStore()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize config store")
	}

	mgr := server.NewManager(store)

	if *foreground {
		log.Info().Msg("running in foreground mode (no system tray)")
		runForeground(mgr)
	} else {
		log.Info().Msg("running in background mode (with system tray)")
		runWithTray(store, mgr)
	}
}

// serverState adapts a Manager to the tray.ServerState interface.
type serverState struct {
	*server.Manager
}

// RequestShutdown quits the tray loop, which runs the exit hook.
func (serverState) RequestShutdown() {
	tray.Quit()
}

// runForeground runs without a system tray, blocking on signals.
func runForeground(mgr *server.Manager) {
	ctx := context.Background()

	if err := mgr.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Info().Str("signal", sig.String()).Msg("shutting down")

	if err := mgr.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("failed to stop server")
	}
}

// runWithTray runs the tray icon on the main goroutine.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runWithTray(store *config.Store, mgr *server.Manager) {
	watcher, err := config.NewWatcher(store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create config watcher")
	}

	onStart := func() {
		if err := watcher.Start(); err != nil {
			log.Error().Err(err).Msg("failed to watch config file")
		}

		// Handle OS signals — quit tray on SIGINT/SIGTERM
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			tray.Quit()
		}()
	}

	onExit := func() {
		watcher.Stop()

		if mgr.IsRunning() {
			if err := mgr.Stop(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to stop server")
			}
		}

		log.Info().Msg("daemon stopped")
	}

	tray.Run(serverState{mgr}, watcher.Changes(), onStart, onExit)
}
