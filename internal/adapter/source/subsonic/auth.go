package subsonic

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/mmcdole/juke/internal/domain"
	"golang.org/x/term"
)

const (
	authTimeout = 30 * time.Second
)

// Credentials are the verified login details produced by an AuthFlow
type Credentials struct {
	URL      string
	Username string
	Password string
}

// AuthFlow prompts for a username and password and verifies them with ping
type AuthFlow struct {
	logger       *slog.Logger
	in           *bufio.Reader
	out          io.Writer
	readPassword func() ([]byte, error)
	legacyAuth   bool
}

// NewAuthFlow creates an interactive authentication flow on stdin/stdout
func NewAuthFlow(legacyAuth bool, logger *slog.Logger) *AuthFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthFlow{
		logger: logger,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		readPassword: func() ([]byte, error) {
			return term.ReadPassword(int(syscall.Stdin))
		},
		legacyAuth: legacyAuth,
	}
}

// Run executes the username/password flow against serverURL
func (f *AuthFlow) Run(ctx context.Context, serverURL string) (*Credentials, error) {
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if serverURL == "" {
		return nil, errors.New("server URL is required")
	}

	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, "Subsonic Authentication")
	fmt.Fprintln(f.out, "━━━━━━━━━━━━━━━━━━━━━━━")

	fmt.Fprint(f.out, "Username: ")
	username, err := f.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && username != "") {
		return nil, fmt.Errorf("failed to read username: %w", err)
	}
	username = strings.TrimSpace(username)

	// Prompt for password (hidden input)
	fmt.Fprint(f.out, "Password: ")
	passwordBytes, err := f.readPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(f.out) // Add newline after hidden input

	creds := &Credentials{
		URL:      serverURL,
		Username: username,
		Password: string(passwordBytes),
	}

	fmt.Fprintln(f.out, "Authenticating...")
	if err := f.verify(ctx, creds); err != nil {
		return nil, err
	}

	fmt.Fprintln(f.out, "Authentication successful!")
	return creds, nil
}

// verify pings the server with the candidate credentials
func (f *AuthFlow) verify(ctx context.Context, creds *Credentials) error {
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	client := NewClient(Config{
		URL:        creds.URL,
		Username:   creds.Username,
		Password:   creds.Password,
		Timeout:    authTimeout,
		LegacyAuth: f.legacyAuth,
	}, f.logger)

	if err := client.Ping(ctx); err != nil {
		f.logger.Error("subsonic auth failed", "url", creds.URL, "username", creds.Username, "error", err)
		if errors.Is(err, domain.ErrAuthFailed) {
			return domain.ErrAuthFailed
		}
		return fmt.Errorf("authentication failed: %w", err)
	}
	return nil
}
