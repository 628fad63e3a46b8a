package subsonic

import "encoding/json"

// Response status values
const (
	statusOK     = "ok"
	statusFailed = "failed"
)

// Envelope is the outer wrapper of every Subsonic JSON response
type Envelope struct {
	Response ResponseHeader `json:"subsonic-response"`
}

// ResponseHeader holds the fields common to every response
type ResponseHeader struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	Type          string    `json:"type,omitempty"`          // Server implementation (OpenSubsonic)
	ServerVersion string    `json:"serverVersion,omitempty"` // OpenSubsonic only
	OpenSubsonic  bool      `json:"openSubsonic,omitempty"`
	Error         *ErrorDTO `json:"error,omitempty"`
}

// ErrorDTO is the error payload of a failed response
type ErrorDTO struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// jukeboxStatusDTO is the flat jukeboxStatus record.
// Pointer fields distinguish "absent" from zero values.
type jukeboxStatusDTO struct {
	CurrentIndex *int     `json:"currentIndex"`
	Playing      *bool    `json:"playing"`
	Gain         *float32 `json:"gain"`
	Position     *uint    `json:"position"`
}

// jukeboxPlaylistDTO carries the status fields and the song list as siblings
type jukeboxPlaylistDTO struct {
	jukeboxStatusDTO
	Entry json.RawMessage `json:"entry"`
}

// playlistDTO is a playlist summary as returned by getPlaylists/getPlaylist
type playlistDTO struct {
	ID        *string `json:"id"`
	Name      *string `json:"name"`
	SongCount *uint64 `json:"songCount"`
	Duration  *uint64 `json:"duration"`
	CoverArt  *string `json:"coverArt"`

	Owner   string `json:"owner,omitempty"`
	Public  bool   `json:"public,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// songDTO is a Subsonic "child" element describing a track
type songDTO struct {
	ID    *string `json:"id"`
	Title *string `json:"title"`

	Parent      string `json:"parent,omitempty"`
	IsDir       bool   `json:"isDir,omitempty"`
	Album       string `json:"album,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Track       int    `json:"track,omitempty"`
	Year        int    `json:"year,omitempty"`
	Genre       string `json:"genre,omitempty"`
	CoverArt    string `json:"coverArt,omitempty"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Suffix      string `json:"suffix,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	BitRate     int    `json:"bitRate,omitempty"`
	Path        string `json:"path,omitempty"`
	IsVideo     bool   `json:"isVideo,omitempty"`
	PlayCount   int64  `json:"playCount,omitempty"`
	DiscNumber  int    `json:"discNumber,omitempty"`
	AlbumID     string `json:"albumId,omitempty"`
	ArtistID    string `json:"artistId,omitempty"`
	Type        string `json:"type,omitempty"`
}
