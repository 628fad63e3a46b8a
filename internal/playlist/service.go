package playlist

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mmcdole/juke/internal/adapter/source/subsonic"
	"github.com/mmcdole/juke/internal/domain"
	"github.com/mmcdole/juke/internal/search"
)

// Remote endpoints
const (
	endpointGetPlaylist  = "getPlaylist"
	endpointGetPlaylists = "getPlaylists"
)

// Response locations inside the subsonic-response document
const (
	playlistPointer  = "/subsonic-response/playlist"
	entryPointer     = "/subsonic-response/playlist/entry"
	playlistsPointer = "/subsonic-response/playlists"
	summaryPointer   = "/subsonic-response/playlists/playlist"
)

// Service fetches playlists over a transport. It keeps no cache: every call
// reflects the server at that moment.
type Service struct {
	transport domain.Transport
	logger    *slog.Logger
}

// NewService creates a new playlist service.
func NewService(transport domain.Transport, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{transport: transport, logger: logger}
}

// List returns every playlist summary visible to user, or to the
// authenticated user when user is empty.
func (s *Service) List(ctx context.Context, user string) ([]domain.Playlist, error) {
	q := subsonic.NewQuery()
	if user != "" {
		q.Arg("username", user)
	}

	doc, err := s.transport.Get(ctx, endpointGetPlaylists, q.Build())
	if err != nil {
		s.logger.Error("failed to fetch playlists", "error", err, "user", user)
		return nil, err
	}

	if _, ok, err := subsonic.Lookup(doc, playlistsPointer); err != nil {
		return nil, err
	} else if !ok {
		return nil, &domain.ParseError{Field: "playlists", Reason: "missing"}
	}

	// Servers omit the array entirely when there are no playlists
	raw, ok, err := subsonic.Lookup(doc, summaryPointer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Playlist{}, nil
	}

	playlists, err := subsonic.ParsePlaylists(raw)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched playlists", "count", len(playlists), "user", user)
	return playlists, nil
}

// Get fetches one playlist with its songs. A missing entry list is accepted
// only when the playlist reports zero songs.
func (s *Service) Get(ctx context.Context, id uint64) (*domain.Playlist, []domain.Song, error) {
	doc, err := s.fetch(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	raw, ok, err := subsonic.Lookup(doc, playlistPointer)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, &domain.ParseError{Field: "playlist", Reason: "missing"}
	}

	playlist, err := subsonic.ParsePlaylist(raw)
	if err != nil {
		return nil, nil, err
	}

	entry, ok, err := subsonic.Lookup(doc, entryPointer)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		if playlist.SongCount == 0 {
			return playlist, []domain.Song{}, nil
		}
		return nil, nil, &domain.ParseError{Field: "entry", Reason: "no entries found"}
	}

	songs, err := subsonic.ParseSongs(entry)
	if err != nil {
		return nil, nil, err
	}
	return playlist, songs, nil
}

// Songs fetches the ordered song list of p
func (s *Service) Songs(ctx context.Context, p domain.Playlist) ([]domain.Song, error) {
	return s.Content(ctx, p.ID)
}

// Content fetches the ordered song list of the playlist with the given id.
// The first song that fails to decode fails the whole call.
func (s *Service) Content(ctx context.Context, id uint64) ([]domain.Song, error) {
	doc, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	raw, ok, err := subsonic.Lookup(doc, entryPointer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ParseError{Field: "entry", Reason: "no entries found"}
	}
	songs, err := subsonic.ParseSongs(raw)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched playlist content", "count", len(songs), "playlistID", id)
	return songs, nil
}

// Filter returns the playlists whose names fuzzy-match query, best match first.
// An empty query returns playlists unchanged.
func (s *Service) Filter(playlists []domain.Playlist, query string) []domain.Playlist {
	if query == "" {
		return playlists
	}
	names := make([]string, len(playlists))
	for i, p := range playlists {
		names[i] = p.Name
	}
	ranked := search.Rank(query, names)
	out := make([]domain.Playlist, 0, len(ranked))
	for _, idx := range ranked {
		out = append(out, playlists[idx])
	}
	return out
}

func (s *Service) fetch(ctx context.Context, id uint64) (json.RawMessage, error) {
	doc, err := s.transport.Get(ctx, endpointGetPlaylist, subsonic.With("id", id).Build())
	if err != nil {
		s.logger.Error("failed to fetch playlist", "error", err, "playlistID", id)
		return nil, err
	}
	return doc, nil
}
