package domain

import (
	"fmt"
	"time"
)

// Song represents a single track as reported by the server
type Song struct {
	ID          uint64 // Server-specific identifier (numeric string on the wire)
	Parent      string // Parent directory ID
	Title       string
	Album       string
	Artist      string
	Track       int
	Year        int
	Genre       string
	CoverArt    string
	Size        int64  // File size in bytes
	ContentType string // e.g. "audio/flac"
	Suffix      string // e.g. "flac"
	Duration    int    // in seconds
	BitRate     int    // in kbps
	Path        string
	DiscNumber  int
	PlayCount   int64
	AlbumID     string
	ArtistID    string
	IsDir       bool
	IsVideo     bool
	Type        string // "music", "podcast", ...
}

// FormattedDuration returns the duration as m:ss
func (s Song) FormattedDuration() string {
	return FormatSeconds(s.Duration)
}

// DisplayTitle returns "Artist - Title", or just the title when the artist is unknown
func (s Song) DisplayTitle() string {
	if s.Artist == "" {
		return s.Title
	}
	return s.Artist + " - " + s.Title
}

// JukeboxStatus is the server-side playback state returned by every jukebox action
type JukeboxStatus struct {
	Index    int     // Current queue position; only meaningful when the queue is non-empty
	Playing  bool    // Whether the jukebox is playing
	Volume   float32 // Gain in [0.0, 1.0]
	Position uint    // Playback offset in seconds
}

// HasCurrent reports whether Index points at a queue entry
func (s JukeboxStatus) HasCurrent(queueLen int) bool {
	return s.Index >= 0 && s.Index < queueLen
}

// JukeboxPlaylist is a snapshot of the jukebox queue together with its status
type JukeboxPlaylist struct {
	Status JukeboxStatus
	Songs  []Song
}

// Current returns the song at the current index, if any
func (p JukeboxPlaylist) Current() (Song, bool) {
	if !p.Status.HasCurrent(len(p.Songs)) {
		return Song{}, false
	}
	return p.Songs[p.Status.Index], true
}

// SongIDs returns the queue's song IDs in queue order
func (p JukeboxPlaylist) SongIDs() []uint64 {
	ids := make([]uint64, len(p.Songs))
	for i, s := range p.Songs {
		ids[i] = s.ID
	}
	return ids
}

// Playlist holds playlist metadata. It does not hold songs; the song list is
// fetched on demand since membership can change between calls.
type Playlist struct {
	ID        uint64
	Name      string
	SongCount uint64
	Duration  uint64 // in seconds
	Cover     string // Cover art ID

	// Optional metadata (zero when the server omits it)
	Owner   string
	Public  bool
	Comment string
}

// FormattedDuration returns the total playlist duration in a human-readable format
func (p Playlist) FormattedDuration() string {
	h := p.Duration / 3600
	m := (p.Duration % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// SavedQueue is a named local snapshot of jukebox song IDs
type SavedQueue struct {
	Name    string    `json:"name"`
	SongIDs []uint64  `json:"song_ids"`
	SavedAt time.Time `json:"saved_at"`
}

// FormatSeconds formats a second count as m:ss (or h:mm:ss past an hour)
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
