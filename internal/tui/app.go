package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/juke/internal/domain"
	"github.com/mmcdole/juke/internal/search"
	"github.com/mmcdole/juke/internal/tui/components"
	"github.com/mmcdole/juke/internal/tui/styles"
)

// ApplicationState represents the current input mode of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateFiltering
	StateSaving
	StateConfirmClear
	StateHelp
)

// ViewKind identifies which list fills the body
type ViewKind int

const (
	ViewQueue ViewKind = iota
	ViewPlaylists
	ViewPlaylistSongs
)

// Layout: tabs, now-playing line, blank, body, footer
const ChromeHeight = 4

const (
	defaultRefreshInterval = 2 * time.Second
	defaultVolumeStep      = 0.05
	statusDuration         = 3 * time.Second
)

// Options tunes the TUI behaviour
type Options struct {
	RefreshInterval time.Duration // 0 disables periodic refresh
	VolumeStep      float32
}

// Model is the main Bubble Tea model for the application
type Model struct {
	State      ApplicationState
	ActiveView ViewKind
	Ready      bool

	// Services
	Jukebox   Jukebox
	Playlists Playlists
	Queues    Queues

	// Data
	Queue        *domain.JukeboxPlaylist
	Status       domain.JukeboxStatus
	PlaylistList []domain.Playlist
	OpenPlaylist *domain.Playlist
	OpenSongs    []domain.Song

	// UI components
	filterInput textinput.Model
	InputModal  components.InputModal
	help        help.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool
	cursors     map[ViewKind]int
	filter      string
	visible     []int
	refreshing  bool

	opts Options
}

// NewModel creates a new application model
func NewModel(jukebox Jukebox, playlists Playlists, queues Queues, opts Options) Model {
	if opts.VolumeStep <= 0 {
		opts.VolumeStep = defaultVolumeStep
	}
	if opts.RefreshInterval < 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}

	fi := textinput.New()
	fi.Prompt = "/"
	fi.PromptStyle = styles.FilterPromptStyle
	fi.CharLimit = 64

	m := Model{
		State:       StateBrowsing,
		ActiveView:  ViewQueue,
		Jukebox:     jukebox,
		Playlists:   playlists,
		Queues:      queues,
		filterInput: fi,
		InputModal:  components.NewInputModal(),
		help:        help.New(),
		cursors:     make(map[ViewKind]int),
		opts:        opts,
	}
	m.refilter()
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		LoadQueueCmd(m.Jukebox),
		LoadPlaylistsCmd(m.Playlists),
	}
	if m.opts.RefreshInterval > 0 {
		cmds = append(cmds, RefreshTickCmd(m.opts.RefreshInterval))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		m.Ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case RefreshTickMsg:
		next := RefreshTickCmd(m.opts.RefreshInterval)
		if m.refreshing || m.Jukebox == nil {
			return m, next
		}
		m.refreshing = true
		return m, tea.Batch(LoadQueueCmd(m.Jukebox), next)

	case QueueLoadedMsg:
		m.refreshing = false
		m.Queue = msg.Playlist
		if msg.Playlist != nil {
			m.Status = msg.Playlist.Status
		}
		m.refilter()
		return m, nil

	case StatusUpdatedMsg:
		if msg.Status != nil {
			m.Status = *msg.Status
		}
		m.StatusMsg = msg.Action
		m.StatusIsErr = false
		cmds := []tea.Cmd{ClearStatusCmd(statusDuration)}
		if msg.QueueChanged {
			cmds = append(cmds, LoadQueueCmd(m.Jukebox))
		}
		return m, tea.Batch(cmds...)

	case PlaylistsLoadedMsg:
		m.PlaylistList = msg.Playlists
		m.refilter()
		return m, nil

	case PlaylistLoadedMsg:
		m.OpenPlaylist = msg.Playlist
		m.OpenSongs = msg.Songs
		m.switchView(ViewPlaylistSongs)
		return m, nil

	case QueueSavedMsg:
		m.StatusMsg = fmt.Sprintf("saved %q (%d songs)", msg.Queue.Name, len(msg.Queue.SongIDs))
		m.StatusIsErr = false
		return m, ClearStatusCmd(statusDuration)

	case ErrMsg:
		m.refreshing = false
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(2 * statusDuration)

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(statusDuration)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.State {
	case StateHelp:
		m.State = StateBrowsing
		return m, nil

	case StateConfirmClear:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateBrowsing
			return m, JukeboxActionCmd("clear", true, m.Jukebox.Clear)
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
		}
		return m, nil

	case StateSaving:
		var cmd tea.Cmd
		var submitted bool
		m.InputModal, cmd, submitted = m.InputModal.Update(msg)
		if submitted {
			name := m.InputModal.Value()
			m.InputModal.Hide()
			m.State = StateBrowsing
			if name == "" {
				return m, nil
			}
			return m, SaveQueueCmd(m.Queues, name)
		}
		if !m.InputModal.IsVisible() {
			m.State = StateBrowsing
		}
		return m, cmd

	case StateFiltering:
		switch msg.Type {
		case tea.KeyEsc:
			m.filterInput.Blur()
			m.filterInput.SetValue("")
			m.State = StateBrowsing
			m.filter = ""
			m.refilter()
			return m, nil
		case tea.KeyEnter:
			m.filterInput.Blur()
			m.State = StateBrowsing
			return m, nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.filter = m.filterInput.Value()
		m.refilter()
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.filter != "" {
			m.filter = ""
			m.filterInput.SetValue("")
			m.refilter()
		}
		return m, nil

	case key.Matches(msg, Keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, Keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, Keys.Home):
		m.cursors[m.ActiveView] = 0
		return m, nil

	case key.Matches(msg, Keys.End):
		m.cursors[m.ActiveView] = max(len(m.visible)-1, 0)
		return m, nil

	case key.Matches(msg, Keys.NextTab):
		if m.ActiveView == ViewQueue {
			if m.OpenPlaylist != nil {
				m.switchView(ViewPlaylistSongs)
			} else {
				m.switchView(ViewPlaylists)
			}
		} else {
			m.switchView(ViewQueue)
		}
		return m, nil

	case key.Matches(msg, Keys.Back):
		if m.ActiveView == ViewPlaylistSongs {
			m.OpenPlaylist = nil
			m.OpenSongs = nil
			m.switchView(ViewPlaylists)
		}
		return m, nil

	case key.Matches(msg, Keys.Enter):
		return m.handleEnter()

	case key.Matches(msg, Keys.PlayPause):
		if m.Status.Playing {
			return m, JukeboxActionCmd("stop", false, m.Jukebox.Stop)
		}
		return m, JukeboxActionCmd("play", false, m.Jukebox.Play)

	case key.Matches(msg, Keys.Remove):
		if m.ActiveView != ViewQueue {
			return m, nil
		}
		pos, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, JukeboxActionCmd(fmt.Sprintf("remove %d", pos), true, func(ctx context.Context) (*domain.JukeboxStatus, error) {
			return m.Jukebox.RemoveID(ctx, uint(pos))
		})

	case key.Matches(msg, Keys.Clear):
		m.State = StateConfirmClear
		return m, nil

	case key.Matches(msg, Keys.Shuffle):
		return m, JukeboxActionCmd("shuffle", true, m.Jukebox.Shuffle)

	case key.Matches(msg, Keys.VolumeUp):
		return m, m.volumeCmd(m.opts.VolumeStep)

	case key.Matches(msg, Keys.VolumeDown):
		return m, m.volumeCmd(-m.opts.VolumeStep)

	case key.Matches(msg, Keys.Append):
		return m, m.enqueueCmd(false)

	case key.Matches(msg, Keys.Replace):
		return m, m.enqueueCmd(true)

	case key.Matches(msg, Keys.Filter):
		m.State = StateFiltering
		m.filterInput.SetValue(m.filter)
		return m, m.filterInput.Focus()

	case key.Matches(msg, Keys.SaveQueue):
		if m.Queues == nil {
			return m, nil
		}
		m.State = StateSaving
		m.InputModal.Show("Save queue as")
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		cmds := []tea.Cmd{LoadQueueCmd(m.Jukebox)}
		switch m.ActiveView {
		case ViewPlaylists:
			cmds = append(cmds, LoadPlaylistsCmd(m.Playlists))
		case ViewPlaylistSongs:
			if m.OpenPlaylist != nil {
				cmds = append(cmds, LoadPlaylistCmd(m.Playlists, m.OpenPlaylist.ID))
			}
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	idx, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch m.ActiveView {
	case ViewQueue:
		return m, JukeboxActionCmd(fmt.Sprintf("skip %d", idx), false, func(ctx context.Context) (*domain.JukeboxStatus, error) {
			return m.Jukebox.SkipTo(ctx, uint(idx))
		})
	case ViewPlaylists:
		return m, LoadPlaylistCmd(m.Playlists, m.PlaylistList[idx].ID)
	case ViewPlaylistSongs:
		return m, EnqueueSongsCmd(m.Jukebox, m.OpenSongs[idx:idx+1], false)
	}
	return m, nil
}

// enqueueCmd queues the selected playlist, or the open playlist's songs
func (m Model) enqueueCmd(replace bool) tea.Cmd {
	switch m.ActiveView {
	case ViewPlaylists:
		idx, ok := m.selected()
		if !ok {
			return nil
		}
		return EnqueuePlaylistCmd(m.Playlists, m.Jukebox, m.PlaylistList[idx].ID, replace)
	case ViewPlaylistSongs:
		if len(m.OpenSongs) == 0 {
			return nil
		}
		return EnqueueSongsCmd(m.Jukebox, m.OpenSongs, replace)
	}
	return nil
}

func (m Model) volumeCmd(delta float32) tea.Cmd {
	volume := max(0, min(1, m.Status.Volume+delta))
	return JukeboxActionCmd(fmt.Sprintf("volume %.0f%%", volume*100), false, func(ctx context.Context) (*domain.JukeboxStatus, error) {
		return m.Jukebox.SetVolume(ctx, volume)
	})
}

// switchView changes the body list, dropping any active filter
func (m *Model) switchView(v ViewKind) {
	m.ActiveView = v
	m.filter = ""
	m.filterInput.SetValue("")
	m.refilter()
}

func (m *Model) moveCursor(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursors[m.ActiveView] = max(0, min(len(m.visible)-1, m.cursors[m.ActiveView]+delta))
}

// selected returns the source index of the row under the cursor
func (m Model) selected() (int, bool) {
	c := m.cursors[m.ActiveView]
	if c < 0 || c >= len(m.visible) {
		return 0, false
	}
	return m.visible[c], true
}

// titles returns the searchable text of each row in the current view
func (m Model) titles() []string {
	switch m.ActiveView {
	case ViewQueue:
		if m.Queue == nil {
			return nil
		}
		return search.SongTitles(m.Queue.Songs)
	case ViewPlaylists:
		names := make([]string, len(m.PlaylistList))
		for i, p := range m.PlaylistList {
			names[i] = p.Name
		}
		return names
	case ViewPlaylistSongs:
		return search.SongTitles(m.OpenSongs)
	}
	return nil
}

// refilter recomputes the visible rows and clamps the cursor
func (m *Model) refilter() {
	titles := m.titles()
	if m.filter == "" {
		m.visible = make([]int, len(titles))
		for i := range titles {
			m.visible[i] = i
		}
	} else {
		matches := search.Filter(m.filter, titles)
		m.visible = make([]int, len(matches))
		for i, match := range matches {
			m.visible[i] = match.Index
		}
	}
	m.cursors[m.ActiveView] = max(0, min(m.cursors[m.ActiveView], len(m.visible)-1))
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	switch m.State {
	case StateHelp:
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center,
			styles.ModalStyle.Render(m.renderHelp()))
	case StateConfirmClear:
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center,
			styles.ModalStyle.Render(renderClearConfirmation()))
	case StateSaving:
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center,
			m.InputModal.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		m.renderNowPlaying(),
		"",
		m.renderBody(max(m.Height-ChromeHeight, 1)),
		m.renderFooter(),
	)
}
