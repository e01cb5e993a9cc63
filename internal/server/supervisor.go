package server

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/KooshaPari/vibeproxy/internal/logging"
	"github.com/KooshaPari/vibeproxy/internal/models"
)

// ProcessSupervisor spawns and terminates the real backend process. The
// lifecycle manager invokes it on the start path when the backend is
// unreachable and on every stop, so a real supervisor can be substituted
// without touching the state machine.
type ProcessSupervisor interface {
	StartProcess(ctx context.Context, cfg *models.AppConfig) error
	StopProcess(ctx context.Context) error
}

// noopSupervisor assumes the backend is managed externally. It only records
// the gap; no process is spawned or terminated.
//
// TODO: replace with a supervisor that spawns and reaps the bifrost process.
type noopSupervisor struct {
	log zerolog.Logger
}

// NewNoopSupervisor returns the externally-managed-backend placeholder.
func NewNoopSupervisor() ProcessSupervisor {
	return &noopSupervisor{log: logging.Component("supervisor")}
}

func (s *noopSupervisor) StartProcess(_ context.Context, _ *models.AppConfig) error {
	s.log.Warn().Msg("server start not yet implemented - assuming server is external")
	return nil
}

func (s *noopSupervisor) StopProcess(_ context.Context) error {
	s.log.Warn().Msg("server stop not yet implemented - assuming server is external")
	return nil
}
