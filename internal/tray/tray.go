package tray

import (
	"context"
	"fmt"
	"time"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog"

	"github.com/KooshaPari/vibeproxy/internal/logging"
)

// statusInterval is how often the tray refreshes the displayed server status.
const statusInterval = 30 * time.Second

var (
	state        ServerState
	configEvents <-chan struct{}
	onStart      func()
	onExit       func()
	log          zerolog.Logger

	statusItem *systray.MenuItem
	toggleItem *systray.MenuItem
	quitItem   *systray.MenuItem
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready; onExitFn when it exits.
// configChanges may be nil; when set, a signal triggers a status refresh.
func Run(s ServerState, configChanges <-chan struct{}, onStartFn, onExitFn func()) {
	state = s
	configEvents = configChanges
	onStart = onStartFn
	onExit = onExitFn
	log = logging.Component("tray")
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetTemplateIcon(iconData, iconData)
	systray.SetTooltip("VibeProxy")

	header := systray.AddMenuItem("VibeProxy", "")
	header.Disable()

	statusItem = systray.AddMenuItem("Server: Stopped", "")
	statusItem.Disable()

	systray.AddSeparator()

	toggleItem = systray.AddMenuItem("Start Server", "Start or stop the proxy backend")

	systray.AddSeparator()

	quitItem = systray.AddMenuItem("Quit", "Shut down VibeProxy")

	if onStart != nil {
		onStart()
	}

	go handleClicks()
	go refreshLoop()
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for {
		select {
		case <-toggleItem.ClickedCh:
			go toggleServer()

		case <-quitItem.ClickedCh:
			if state != nil {
				state.RequestShutdown()
			}
		}
	}
}

// toggleServer starts or stops the server depending on the cached flag and
// refreshes the menu from a fresh probe afterwards.
func toggleServer() {
	ctx := context.Background()

	if state.IsRunning() {
		if err := state.Stop(ctx); err != nil {
			log.Error().Err(err).Msg("failed to stop server")
			return
		}
	} else {
		if err := state.Start(ctx); err != nil {
			log.Error().Err(err).Msg("failed to start server")
			return
		}
	}

	refreshStatus()
}

// refreshLoop keeps the displayed status current, re-probing periodically and
// whenever the config file changes on disk.
func refreshLoop() {
	refreshStatus()

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			refreshStatus()
		case _, ok := <-configEvents:
			if !ok {
				return
			}
			log.Info().Msg("configuration changed, refreshing status")
			refreshStatus()
		}
	}
}

func refreshStatus() {
	if state == nil {
		return
	}

	status, err := state.Status(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("failed to query server status")
		statusItem.SetTitle("Server: Unknown")
		return
	}

	if status.Running {
		statusItem.SetTitle(fmt.Sprintf("Server: Running (%dms)", status.LatencyMS))
	} else {
		statusItem.SetTitle("Server: Stopped")
	}

	updateToggle()
	systray.SetTooltip(formatTooltip(status.Running))
}

func updateToggle() {
	if state.IsRunning() {
		toggleItem.SetTitle("Stop Server")
	} else {
		toggleItem.SetTitle("Start Server")
	}
}

func formatTooltip(running bool) string {
	if running {
		return "VibeProxy — server running"
	}
	return "VibeProxy — server stopped"
}
