package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmcdole/juke/internal/adapter"
	"github.com/mmcdole/juke/internal/adapter/source"
	"github.com/mmcdole/juke/internal/jukebox"
	"github.com/mmcdole/juke/internal/playlist"
	"github.com/mmcdole/juke/internal/queue"
	"github.com/mmcdole/juke/internal/store"
	"github.com/mmcdole/juke/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wiring shared by every subcommand
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *adapter.Config
	logger  *slog.Logger
	out     io.Writer

	jukebox   *jukebox.Controller
	playlists *playlist.Service
	queues    *queue.Service

	closers []io.Closer
}

// load reads config and sets up logging
func (a *app) load() error {
	cfg, err := adapter.LoadConfigFrom(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		a.closers = append(a.closers, closer)
	}
	a.logger = logger
	slog.SetDefault(logger)

	logger.Info("starting juke", "version", Version)
	return nil
}

// connect builds the transport, the jukebox controller and the playlist service
func (a *app) connect() error {
	if !a.cfg.IsConfigured() {
		return fmt.Errorf("not configured: run 'juke login' first")
	}

	client, err := source.NewClientFromConfig(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctrl, err := jukebox.Start(client, a.logger)
	if err != nil {
		return fmt.Errorf("failed to start jukebox: %w", err)
	}
	a.jukebox = ctrl
	a.closers = append(a.closers, ctrl)

	a.playlists = playlist.NewService(client, a.logger)
	return nil
}

// openQueues opens the saved-queue store. Only commands that need it call
// this, so the CLI can run while a TUI holds the database lock.
func (a *app) openQueues() error {
	path, err := a.cfg.Store.GetPath()
	if err != nil {
		return err
	}
	qs, err := store.NewQueueStore(path, a.cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("failed to open queue store: %w", err)
	}
	a.closers = append(a.closers, qs)
	a.queues = queue.NewService(a.jukebox, qs, a.logger)
	return nil
}

// close logs shutdown, then releases resources in reverse order. The log
// file is the first closer, so it closes last.
func (a *app) close() {
	if a.logger != nil {
		a.logger.Info("shutting down")
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
	a.closers = nil
}

type runFunc func(ctx context.Context, a *app, args []string) error

// connected wraps fn with config loading and a connected jukebox
func (a *app) connected(needQueues bool, fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.load(); err != nil {
			return err
		}
		defer a.close()

		if err := a.connect(); err != nil {
			return err
		}
		if needQueues {
			if err := a.openQueues(); err != nil {
				return err
			}
		}
		a.out = cmd.OutOrStdout()
		return fn(cmd.Context(), a, args)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "juke",
		Short:         "Remote control for a Subsonic server's jukebox",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.connected(true, runTUI),
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default ~/.config/juke/config.yaml)")

	root.AddCommand(
		newLoginCmd(a),
		&cobra.Command{
			Use:   "tui",
			Short: "Open the interactive remote",
			Args:  cobra.NoArgs,
			RunE:  a.connected(true, runTUI),
		},
	)
	root.AddCommand(jukeboxCmds(a)...)
	root.AddCommand(playlistCmds(a)...)
	root.AddCommand(savedQueueCmds(a)...)

	return root
}

func runTUI(ctx context.Context, a *app, _ []string) error {
	model := tui.NewModel(a.jukebox, a.playlists, a.queues, tui.Options{
		RefreshInterval: a.cfg.UI.GetRefreshInterval(),
		VolumeStep:      float32(a.cfg.UI.VolumeStep),
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	a.logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func newLoginCmd(a *app) *cobra.Command {
	var serverURL string
	var legacy bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify credentials against a server and save them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			if serverURL == "" {
				serverURL = a.cfg.Server.URL
			}
			for strings.TrimSpace(serverURL) == "" {
				fmt.Fprint(out, "Enter your server URL (e.g., http://192.168.1.100:4533): ")
				input, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				serverURL = strings.TrimSpace(input)
				if serverURL == "" {
					fmt.Fprintln(out, "Server URL cannot be empty. Please try again.")
				}
			}

			if cmd.Flags().Changed("legacy-auth") {
				a.cfg.Server.LegacyAuth = legacy
			}

			creds, err := source.NewAuthFlow(a.cfg, a.logger).Run(cmd.Context(), serverURL)
			if err != nil {
				return err
			}

			a.cfg.Server.URL = creds.URL
			a.cfg.Server.Username = creds.Username
			a.cfg.Server.Password = creds.Password

			cfgFile := a.cfgFile
			if cfgFile == "" {
				cfgFile = a.v.ConfigFileUsed()
			}
			if cfgFile == "" {
				err = adapter.SaveConfig(a.cfg)
			} else {
				err = adapter.SaveConfigTo(a.v, cfgFile, a.cfg)
			}
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "✓ Configuration saved!")
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "url", "", "server URL")
	cmd.Flags().BoolVar(&legacy, "legacy-auth", false, "send the password hex-encoded instead of a salted token")
	return cmd
}
