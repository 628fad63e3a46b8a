package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/mmcdole/juke/internal/domain"
)

func jukeboxCmds(a *app) []*cobra.Command {
	status := func(action func(context.Context, *app, []string) (*domain.JukeboxStatus, error)) runFunc {
		return func(ctx context.Context, a *app, args []string) error {
			st, err := action(ctx, a, args)
			if err != nil {
				return err
			}
			printStatus(a.out, st)
			return nil
		}
	}

	return []*cobra.Command{
		{
			Use:   "status",
			Short: "Show jukebox status",
			Args:  cobra.NoArgs,
			RunE: a.connected(false, status(func(ctx context.Context, a *app, _ []string) (*domain.JukeboxStatus, error) {
				return a.jukebox.Status(ctx)
			})),
		},
		{
			Use:   "queue",
			Short: "List the jukebox queue",
			Args:  cobra.NoArgs,
			RunE: a.connected(false, func(ctx context.Context, a *app, _ []string) error {
				pl, err := a.jukebox.Playlist(ctx)
				if err != nil {
					return err
				}
				printStatus(a.out, &pl.Status)
				printQueue(a.out, pl)
				return nil
			}),
		},
		{
			Use:   "play",
			Short: "Start playback",
			Args:  cobra.NoArgs,
			RunE: a.connected(false, status(func(ctx context.Context, a *app, _ []string) (*domain.JukeboxStatus, error) {
				return a.jukebox.Play(ctx)
			})),
		},
		{
			Use:   "stop",
			Short: "Stop playback",
			Args:  cobra.NoArgs,
			RunE: a.connected(false, status(func(ctx context.Context, a *app, _ []string) (*domain.JukeboxStatus, error) {
				return a.jukebox.Stop(ctx)
			})),
		},
		{
			Use:   "skip N",
			Short: "Jump to queue position N (zero-based)",
			Args:  cobra.ExactArgs(1),
			RunE: a.connected(false, status(func(ctx context.Context, a *app, args []string) (*domain.JukeboxStatus, error) {
				n, err := parsePosition(args[0])
				if err != nil {
					return nil, err
				}
				return a.jukebox.SkipTo(ctx, n)
			})),
		},
		{
			Use:   "add ID...",
			Short: "Append songs to the queue, in order",
			Args:  cobra.MinimumNArgs(1),
			RunE: a.connected(false, status(func(ctx context.Context, a *app, args []string) (*domain.JukeboxStatus, error) {
				ids, err := parseIDs(args)
				if err != nil {
					return nil, err
				}
				return a.jukebox.AddAllIDs(ctx, ids)
			})),
		},
		{
			Use:   "set ID...",
			Short: "Replace the queue with songs, in order",
			Args:  cobra.MinimumNArgs(1),
			RunE: a.connected(false, status(func(ctx context.Context, a *app, args []string) (*domain.JukeboxStatus, error) {
				ids, err := parseIDs(args)
				if err != nil {
					return nil, err
				}
				return a.jukebox.Set(ctx, ids)
			})),
		},
		{
			Use:   "remove POS",
			Short: "Remove the song at queue position POS (zero-based)",
			Args:  cobra.ExactArgs(1),
			RunE: a.connected(false, status(func(ctx context.Context, a *app, args []string) (*domain.JukeboxStatus, error) {
				pos, err := parsePosition(args[0])
				if err != nil {
					return nil, err
				}
				return a.jukebox.RemoveID(ctx, pos)
			})),
		},
		{
			Use:   "clear",
			Short: "Empty the queue",
			Args:  cobra.NoArgs,
			RunE: a.connected(false, status(func(ctx context.Context, a *app, _ []string) (*domain.JukeboxStatus, error) {
				return a.jukebox.Clear(ctx)
			})),
		},
		{
			Use:   "shuffle",
			Short: "Shuffle the queue",
			Args:  cobra.NoArgs,
			RunE: a.connected(false, status(func(ctx context.Context, a *app, _ []string) (*domain.JukeboxStatus, error) {
				return a.jukebox.Shuffle(ctx)
			})),
		},
		{
			Use:   "volume V",
			Short: "Set the gain, 0.0 to 1.0 (or a percentage like 40%)",
			Args:  cobra.ExactArgs(1),
			RunE: a.connected(false, status(func(ctx context.Context, a *app, args []string) (*domain.JukeboxStatus, error) {
				v, err := parseVolume(args[0])
				if err != nil {
					return nil, err
				}
				return a.jukebox.SetVolume(ctx, v)
			})),
		},
	}
}

func playlistCmds(a *app) []*cobra.Command {
	var user, filter string

	list := &cobra.Command{
		Use:   "playlists",
		Short: "List playlists",
		Args:  cobra.NoArgs,
		RunE: a.connected(false, func(ctx context.Context, a *app, _ []string) error {
			playlists, err := a.playlists.List(ctx, user)
			if err != nil {
				return err
			}
			printPlaylists(a.out, a.playlists.Filter(playlists, filter))
			return nil
		}),
	}
	list.Flags().StringVar(&user, "user", "", "list another user's playlists (requires admin)")
	list.Flags().StringVar(&filter, "filter", "", "fuzzy filter by name")

	var replace bool
	enqueue := &cobra.Command{
		Use:   "enqueue ID",
		Short: "Append a playlist's songs to the jukebox queue",
		Args:  cobra.ExactArgs(1),
		RunE: a.connected(false, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			songs, err := a.playlists.Content(ctx, id)
			if err != nil {
				return err
			}
			var st *domain.JukeboxStatus
			if replace {
				st, err = a.jukebox.Set(ctx, lo.Map(songs, func(s domain.Song, _ int) uint64 { return s.ID }))
			} else {
				st, err = a.jukebox.AddAll(ctx, songs)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "queued %d songs\n", len(songs))
			printStatus(a.out, st)
			return nil
		}),
	}
	enqueue.Flags().BoolVar(&replace, "replace", false, "replace the queue instead of appending")

	return []*cobra.Command{
		list,
		{
			Use:   "playlist ID",
			Short: "Show a playlist and its songs",
			Args:  cobra.ExactArgs(1),
			RunE: a.connected(false, func(ctx context.Context, a *app, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				p, songs, err := a.playlists.Get(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s (%d songs, %s)\n", p.Name, p.SongCount, p.FormattedDuration())
				printSongs(a.out, songs, -1)
				return nil
			}),
		},
		enqueue,
	}
}

func savedQueueCmds(a *app) []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "save NAME",
			Short: "Save the current jukebox queue locally",
			Args:  cobra.ExactArgs(1),
			RunE: a.connected(true, func(ctx context.Context, a *app, args []string) error {
				q, err := a.queues.SaveCurrent(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "saved %q (%d songs)\n", q.Name, len(q.SongIDs))
				return nil
			}),
		},
		{
			Use:   "restore NAME",
			Short: "Replace the jukebox queue with a saved one",
			Args:  cobra.ExactArgs(1),
			RunE: a.connected(true, func(ctx context.Context, a *app, args []string) error {
				st, err := a.queues.Restore(ctx, args[0])
				if err != nil {
					return err
				}
				printStatus(a.out, st)
				return nil
			}),
		},
		{
			Use:   "saved",
			Short: "List saved queues",
			Args:  cobra.NoArgs,
			RunE: a.connected(true, func(ctx context.Context, a *app, _ []string) error {
				queues, err := a.queues.List()
				if err != nil {
					return err
				}
				t := newTable(a.out)
				t.AppendHeader(table.Row{"Name", "Songs", "Saved"})
				for _, q := range queues {
					t.AppendRow(table.Row{q.Name, len(q.SongIDs), q.SavedAt.Local().Format(time.DateTime)})
				}
				t.Render()
				return nil
			}),
		},
		{
			Use:   "forget NAME",
			Short: "Delete a saved queue",
			Args:  cobra.ExactArgs(1),
			RunE: a.connected(true, func(ctx context.Context, a *app, args []string) error {
				return a.queues.Delete(args[0])
			}),
		},
	}
}

func printStatus(w io.Writer, st *domain.JukeboxStatus) {
	state := "stopped"
	if st.Playing {
		state = "playing"
	}
	fmt.Fprintf(w, "%s  index %d  position %s  volume %.0f%%\n",
		state, st.Index, domain.FormatSeconds(int(st.Position)), st.Volume*100)
}

func printQueue(w io.Writer, pl *domain.JukeboxPlaylist) {
	current := -1
	if pl.Status.HasCurrent(len(pl.Songs)) {
		current = pl.Status.Index
	}
	printSongs(w, pl.Songs, current)
}

func printSongs(w io.Writer, songs []domain.Song, current int) {
	t := newTable(w)
	t.AppendHeader(table.Row{"", "#", "ID", "Title", "Duration"})
	for i, s := range songs {
		marker := ""
		if i == current {
			marker = text.FgGreen.Sprint("▶")
		}
		t.AppendRow(table.Row{marker, i, s.ID, s.DisplayTitle(), s.FormattedDuration()})
	}
	t.Render()
}

func printPlaylists(w io.Writer, playlists []domain.Playlist) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Songs", "Duration", "Owner"})
	for _, p := range playlists {
		t.AppendRow(table.Row{p.ID, p.Name, p.SongCount, p.FormattedDuration(), text.FgHiBlack.Sprint(p.Owner)})
	}
	t.Render()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parsePosition(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid queue position %q", s)
	}
	return uint(n), nil
}

// parseVolume accepts a gain like 0.4 or a percentage like 40%
func parseVolume(s string) (float32, error) {
	percent := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 32)
	if err != nil {
		return 0, fmt.Errorf("invalid volume %q", s)
	}
	if percent {
		v /= 100
	}
	return float32(v), nil
}
