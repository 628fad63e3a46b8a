package source

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/juke/internal/adapter"
	"github.com/mmcdole/juke/internal/adapter/source/subsonic"
)

// NewClient creates a Subsonic transport from explicit settings
func NewClient(cfg subsonic.Config, logger *slog.Logger) (*subsonic.Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("server username is required")
	}
	return subsonic.NewClient(cfg, logger), nil
}

// NewClientFromConfig creates a Subsonic transport from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (*subsonic.Client, error) {
	return NewClient(subsonic.Config{
		URL:        cfg.Server.URL,
		Username:   cfg.Server.Username,
		Password:   cfg.Server.Password,
		ClientID:   cfg.Client.ID,
		APIVersion: cfg.Client.APIVersion,
		Timeout:    cfg.Client.GetTimeout(),
		LegacyAuth: cfg.Server.LegacyAuth,
	}, logger)
}
