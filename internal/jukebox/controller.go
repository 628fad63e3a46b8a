// Package jukebox controls the server-side jukebox: a playback engine on the
// server that plays its own queue, separate from client-side streaming.
package jukebox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/samber/lo"

	"github.com/mmcdole/juke/internal/adapter/source/subsonic"
	"github.com/mmcdole/juke/internal/domain"
)

const endpoint = "jukeboxControl"

// Remote actions accepted by jukeboxControl
const (
	actionGet     = "get"
	actionStatus  = "status"
	actionStart   = "start"
	actionStop    = "stop"
	actionSkip    = "skip"
	actionAdd     = "add"
	actionSet     = "set"
	actionRemove  = "remove"
	actionClear   = "clear"
	actionShuffle = "shuffle"
	actionSetGain = "setGain"
)

// Response locations inside the subsonic-response document
const (
	statusPointer   = "/subsonic-response/jukeboxStatus"
	playlistPointer = "/subsonic-response/jukeboxPlaylist"
)

// Controller issues jukebox actions over a borrowed transport.
// Every call sends one request and returns a fresh snapshot of server state.
type Controller struct {
	mu        sync.Mutex
	transport domain.Transport
	release   func()
	closed    bool
	logger    *slog.Logger
}

// Start borrows transport for the lifetime of the controller. Transports that
// implement domain.Claimer are claimed exclusively; a second Start on the same
// transport fails with domain.ErrTransportBusy until Close is called.
func Start(transport domain.Transport, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	release := func() {}
	if claimer, ok := transport.(domain.Claimer); ok {
		r, err := claimer.Claim()
		if err != nil {
			return nil, err
		}
		release = r
	}
	return &Controller{
		transport: transport,
		release:   release,
		logger:    logger,
	}, nil
}

// Close releases the transport. Further calls fail with domain.ErrControllerClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.release()
	return nil
}

// Playlist returns the jukebox queue together with its status
func (c *Controller) Playlist(ctx context.Context) (*domain.JukeboxPlaylist, error) {
	raw, err := c.send(ctx, subsonic.With("action", actionGet), playlistPointer)
	if err != nil {
		return nil, err
	}
	playlist, err := subsonic.ParseJukeboxPlaylist(raw)
	if err != nil {
		return nil, fmt.Errorf("jukebox %s: %w", actionGet, err)
	}
	return playlist, nil
}

// Status returns the current jukebox status
func (c *Controller) Status(ctx context.Context) (*domain.JukeboxStatus, error) {
	return c.sendAction(ctx, actionStatus)
}

// Play starts playback
func (c *Controller) Play(ctx context.Context) (*domain.JukeboxStatus, error) {
	return c.sendAction(ctx, actionStart)
}

// Stop stops playback
func (c *Controller) Stop(ctx context.Context) (*domain.JukeboxStatus, error) {
	return c.sendAction(ctx, actionStop)
}

// SkipTo moves playback to queue position n (zero-indexed).
// The server plays the last song when n is past the end of the queue.
func (c *Controller) SkipTo(ctx context.Context, n uint) (*domain.JukeboxStatus, error) {
	index := uint64(n)
	return c.sendActionWith(ctx, actionSkip, &index, nil)
}

// Add appends a song to the queue
func (c *Controller) Add(ctx context.Context, song domain.Song) (*domain.JukeboxStatus, error) {
	return c.AddID(ctx, song.ID)
}

// AddID appends a song to the queue by ID
func (c *Controller) AddID(ctx context.Context, id uint64) (*domain.JukeboxStatus, error) {
	return c.sendActionWith(ctx, actionAdd, nil, []uint64{id})
}

// AddAll appends songs to the queue in the given order
func (c *Controller) AddAll(ctx context.Context, songs []domain.Song) (*domain.JukeboxStatus, error) {
	return c.AddAllIDs(ctx, lo.Map(songs, func(s domain.Song, _ int) uint64 { return s.ID }))
}

// AddAllIDs appends song IDs to the queue in the given order, duplicates included
func (c *Controller) AddAllIDs(ctx context.Context, ids []uint64) (*domain.JukeboxStatus, error) {
	return c.sendActionWith(ctx, actionAdd, nil, ids)
}

// Set replaces the whole queue with ids
func (c *Controller) Set(ctx context.Context, ids []uint64) (*domain.JukeboxStatus, error) {
	return c.sendActionWith(ctx, actionSet, nil, ids)
}

// Clear empties the queue
func (c *Controller) Clear(ctx context.Context) (*domain.JukeboxStatus, error) {
	return c.sendAction(ctx, actionClear)
}

// Remove sends song.ID as the queue position to remove.
//
// The server removes by position, not by song identity, so this only does
// what the name suggests when the caller has stored a position in ID.
// Prefer RemoveID with an explicit position.
func (c *Controller) Remove(ctx context.Context, song domain.Song) (*domain.JukeboxStatus, error) {
	return c.sendActionWith(ctx, actionRemove, &song.ID, nil)
}

// RemoveID removes the entry at queue position pos. Despite the name, the
// argument is a position and is sent as the index parameter.
func (c *Controller) RemoveID(ctx context.Context, pos uint) (*domain.JukeboxStatus, error) {
	index := uint64(pos)
	return c.sendActionWith(ctx, actionRemove, &index, nil)
}

// Shuffle randomizes the queue order
func (c *Controller) Shuffle(ctx context.Context) (*domain.JukeboxStatus, error) {
	return c.sendAction(ctx, actionShuffle)
}

// SetVolume sets the gain. The value is passed through unvalidated; the
// server decides what range it accepts.
func (c *Controller) SetVolume(ctx context.Context, volume float32) (*domain.JukeboxStatus, error) {
	return c.sendStatus(ctx, actionSetGain, subsonic.With("action", actionSetGain).Arg("gain", volume))
}

func (c *Controller) sendAction(ctx context.Context, action string) (*domain.JukeboxStatus, error) {
	return c.sendActionWith(ctx, action, nil, nil)
}

func (c *Controller) sendActionWith(ctx context.Context, action string, index *uint64, ids []uint64) (*domain.JukeboxStatus, error) {
	q := subsonic.With("action", action).
		Arg("index", index).
		ArgList("id", lo.Map(ids, func(id uint64, _ int) string { return strconv.FormatUint(id, 10) }))
	return c.sendStatus(ctx, action, q)
}

func (c *Controller) sendStatus(ctx context.Context, action string, q *subsonic.Query) (*domain.JukeboxStatus, error) {
	raw, err := c.send(ctx, q, statusPointer)
	if err != nil {
		return nil, err
	}
	status, err := subsonic.ParseJukeboxStatus(raw)
	if err != nil {
		return nil, fmt.Errorf("jukebox %s: %w", action, err)
	}
	return status, nil
}

// send performs one request and extracts the object at pointer
func (c *Controller) send(ctx context.Context, q *subsonic.Query, pointer string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, domain.ErrControllerClosed
	}

	params := q.Build()
	doc, err := c.transport.Get(ctx, endpoint, params)
	if err != nil {
		c.logger.Debug("jukebox request failed", "action", params.Get("action"), "error", err)
		return nil, err
	}

	raw, ok, err := subsonic.Lookup(doc, pointer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ParseError{Field: pointer, Reason: "missing"}
	}
	return raw, nil
}
