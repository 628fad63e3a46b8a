package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/mmcdole/juke/internal/domain"
)

const requestTimeout = 30 * time.Second

// Jukebox is the subset of the jukebox controller the TUI drives
type Jukebox interface {
	Playlist(ctx context.Context) (*domain.JukeboxPlaylist, error)
	Status(ctx context.Context) (*domain.JukeboxStatus, error)
	Play(ctx context.Context) (*domain.JukeboxStatus, error)
	Stop(ctx context.Context) (*domain.JukeboxStatus, error)
	SkipTo(ctx context.Context, n uint) (*domain.JukeboxStatus, error)
	AddAll(ctx context.Context, songs []domain.Song) (*domain.JukeboxStatus, error)
	Set(ctx context.Context, ids []uint64) (*domain.JukeboxStatus, error)
	RemoveID(ctx context.Context, pos uint) (*domain.JukeboxStatus, error)
	Clear(ctx context.Context) (*domain.JukeboxStatus, error)
	Shuffle(ctx context.Context) (*domain.JukeboxStatus, error)
	SetVolume(ctx context.Context, volume float32) (*domain.JukeboxStatus, error)
}

// Playlists fetches playlists from the server
type Playlists interface {
	List(ctx context.Context, user string) ([]domain.Playlist, error)
	Get(ctx context.Context, id uint64) (*domain.Playlist, []domain.Song, error)
}

// Queues saves jukebox snapshots locally
type Queues interface {
	SaveCurrent(ctx context.Context, name string) (*domain.SavedQueue, error)
}

// Command factories for async operations

// LoadQueueCmd fetches the jukebox queue together with its status
func LoadQueueCmd(jb Jukebox) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		playlist, err := jb.Playlist(ctx)
		if isMissingEntry(err) {
			// Servers omit entry when the jukebox queue is empty
			var status *domain.JukeboxStatus
			status, err = jb.Status(ctx)
			if err == nil {
				playlist = &domain.JukeboxPlaylist{Status: *status, Songs: []domain.Song{}}
			}
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "loading queue"}
		}
		return QueueLoadedMsg{Playlist: playlist}
	}
}

func isMissingEntry(err error) bool {
	var pe *domain.ParseError
	return errors.As(err, &pe) && pe.Field == "entry" && pe.Reason == "missing"
}

// LoadPlaylistsCmd fetches the playlist summaries visible to the user
func LoadPlaylistsCmd(svc Playlists) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		playlists, err := svc.List(ctx, "")
		if err != nil {
			return ErrMsg{Err: err, Context: "loading playlists"}
		}
		return PlaylistsLoadedMsg{Playlists: playlists}
	}
}

// LoadPlaylistCmd fetches one playlist with its songs
func LoadPlaylistCmd(svc Playlists, id uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		playlist, songs, err := svc.Get(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading playlist"}
		}
		return PlaylistLoadedMsg{Playlist: playlist, Songs: songs}
	}
}

// EnqueuePlaylistCmd fetches a playlist and appends (or, with replace, sets)
// its songs on the jukebox.
func EnqueuePlaylistCmd(svc Playlists, jb Jukebox, id uint64, replace bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		_, songs, err := svc.Get(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading playlist"}
		}
		return enqueueSongs(ctx, jb, songs, replace)
	}
}

// EnqueueSongsCmd appends (or, with replace, sets) songs on the jukebox
func EnqueueSongsCmd(jb Jukebox, songs []domain.Song, replace bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return enqueueSongs(ctx, jb, songs, replace)
	}
}

func enqueueSongs(ctx context.Context, jb Jukebox, songs []domain.Song, replace bool) tea.Msg {
	var (
		status *domain.JukeboxStatus
		err    error
		action = "add"
	)
	if replace {
		action = "set"
		status, err = jb.Set(ctx, lo.Map(songs, func(s domain.Song, _ int) uint64 { return s.ID }))
	} else {
		status, err = jb.AddAll(ctx, songs)
	}
	if err != nil {
		return ErrMsg{Err: err, Context: "queueing songs"}
	}
	return StatusUpdatedMsg{Status: status, Action: fmt.Sprintf("%s %d", action, len(songs)), QueueChanged: true}
}

// JukeboxActionCmd runs one jukebox action and reports the returned status
func JukeboxActionCmd(action string, queueChanged bool, fn func(context.Context) (*domain.JukeboxStatus, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		status, err := fn(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: action}
		}
		return StatusUpdatedMsg{Status: status, Action: action, QueueChanged: queueChanged}
	}
}

// SaveQueueCmd stores the current jukebox queue under name
func SaveQueueCmd(svc Queues, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		q, err := svc.SaveCurrent(ctx, name)
		if err != nil {
			return ErrMsg{Err: err, Context: "saving queue"}
		}
		return QueueSavedMsg{Queue: q}
	}
}

// RefreshTickCmd schedules the next periodic refresh
func RefreshTickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return RefreshTickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
