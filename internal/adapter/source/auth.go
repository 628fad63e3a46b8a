package source

import (
	"log/slog"

	"github.com/mmcdole/juke/internal/adapter"
	"github.com/mmcdole/juke/internal/adapter/source/subsonic"
)

// NewAuthFlow creates the username/password flow, honouring the configured
// auth mode (token+salt, or legacy hex password).
func NewAuthFlow(cfg *adapter.Config, logger *slog.Logger) *subsonic.AuthFlow {
	return subsonic.NewAuthFlow(cfg.Server.LegacyAuth, logger)
}
