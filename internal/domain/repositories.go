package domain

import (
	"context"
	"encoding/json"
	"net/url"
)

// Transport performs an authenticated GET against a named remote endpoint
// and returns the raw response document.
type Transport interface {
	Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error)
}

// Claimer is implemented by transports that can be borrowed exclusively.
// Claim fails with ErrTransportBusy while another claim is outstanding.
type Claimer interface {
	Claim() (release func(), err error)
}

// JukeboxRepository is the subset of jukebox operations used by queue snapshots
type JukeboxRepository interface {
	Playlist(ctx context.Context) (*JukeboxPlaylist, error)
	Clear(ctx context.Context) (*JukeboxStatus, error)
	AddAllIDs(ctx context.Context, ids []uint64) (*JukeboxStatus, error)
}

// QueueStore persists named jukebox queue snapshots
type QueueStore interface {
	SaveQueue(q SavedQueue) error
	LoadQueue(name string) (*SavedQueue, bool, error)
	ListQueues() ([]SavedQueue, error)
	DeleteQueue(name string) error
	Close() error
}
