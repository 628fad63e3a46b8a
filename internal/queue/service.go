// Package queue saves and restores named snapshots of the jukebox queue.
package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/juke/internal/domain"
)

// Service orchestrates the jukebox controller and the local queue store.
type Service struct {
	jukebox domain.JukeboxRepository
	store   domain.QueueStore
	logger  *slog.Logger
}

// NewService creates a new queue service.
func NewService(jukebox domain.JukeboxRepository, store domain.QueueStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jukebox: jukebox, store: store, logger: logger}
}

// SaveCurrent stores the song IDs currently queued on the jukebox under name
func (s *Service) SaveCurrent(ctx context.Context, name string) (*domain.SavedQueue, error) {
	playlist, err := s.jukebox.Playlist(ctx)
	if err != nil {
		return nil, err
	}

	q := domain.SavedQueue{Name: name, SongIDs: playlist.SongIDs()}
	if err := s.store.SaveQueue(q); err != nil {
		s.logger.Error("failed to save queue", "error", err, "name", name)
		return nil, fmt.Errorf("save queue %q: %w", name, err)
	}

	saved, _, err := s.store.LoadQueue(name)
	if err != nil || saved == nil {
		// Stored fine; report what was written
		saved = &q
	}
	s.logger.Debug("saved queue", "name", name, "count", len(q.SongIDs))
	return saved, nil
}

// Restore clears the jukebox and re-queues the snapshot saved under name,
// in the order it was saved.
func (s *Service) Restore(ctx context.Context, name string) (*domain.JukeboxStatus, error) {
	q, ok, err := s.store.LoadQueue(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrQueueNotFound, name)
	}

	status, err := s.jukebox.Clear(ctx)
	if err != nil {
		return nil, err
	}
	if len(q.SongIDs) == 0 {
		return status, nil
	}

	status, err = s.jukebox.AddAllIDs(ctx, q.SongIDs)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("restored queue", "name", name, "count", len(q.SongIDs))
	return status, nil
}

// List returns all saved snapshots
func (s *Service) List() ([]domain.SavedQueue, error) {
	return s.store.ListQueues()
}

// Delete removes a saved snapshot
func (s *Service) Delete(name string) error {
	if err := s.store.DeleteQueue(name); err != nil {
		return fmt.Errorf("delete queue %q: %w", name, err)
	}
	return nil
}
