package tui

import (
	"github.com/mmcdole/juke/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// QueueLoadedMsg carries a fresh snapshot of the jukebox queue and status
type QueueLoadedMsg struct {
	Playlist *domain.JukeboxPlaylist
}

// StatusUpdatedMsg carries the status returned by a jukebox action.
// QueueChanged is set when the action altered the queue contents.
type StatusUpdatedMsg struct {
	Status       *domain.JukeboxStatus
	Action       string
	QueueChanged bool
}

// PlaylistsLoadedMsg signals that playlist summaries have been loaded
type PlaylistsLoadedMsg struct {
	Playlists []domain.Playlist
}

// PlaylistLoadedMsg signals that one playlist and its songs have been loaded
type PlaylistLoadedMsg struct {
	Playlist *domain.Playlist
	Songs    []domain.Song
}

// QueueSavedMsg signals that the current queue was stored locally
type QueueSavedMsg struct {
	Queue *domain.SavedQueue
}

// RefreshTickMsg triggers a periodic jukebox refresh
type RefreshTickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
