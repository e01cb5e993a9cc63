// Package tray implements the system tray icon and menu.
package tray

import (
	"context"

	"github.com/KooshaPari/vibeproxy/internal/server"
)

// ServerState provides access to server lifecycle state for the tray.
type ServerState interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Status(ctx context.Context) (*server.Status, error)
	IsRunning() bool
	RequestShutdown()
}
