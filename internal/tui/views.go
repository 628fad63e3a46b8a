package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/juke/internal/domain"
	"github.com/mmcdole/juke/internal/tui/styles"
)

const volumeBarWidth = 10

func (m Model) renderTabs() string {
	queueLabel := "Queue"
	if m.Queue != nil {
		queueLabel = fmt.Sprintf("Queue (%d)", len(m.Queue.Songs))
	}
	playlistsLabel := "Playlists"
	if m.ActiveView == ViewPlaylistSongs && m.OpenPlaylist != nil {
		playlistsLabel = "Playlists › " + m.OpenPlaylist.Name
	}

	tab := func(label string, active bool) string {
		if active {
			return styles.ActiveTabStyle.Render(label)
		}
		return styles.InactiveTabStyle.Render(label)
	}
	return tab(queueLabel, m.ActiveView == ViewQueue) + " " + tab(playlistsLabel, m.ActiveView != ViewQueue)
}

func (m Model) renderNowPlaying() string {
	state := styles.DimStyle.Render(styles.StoppedChar)
	if m.Status.Playing {
		state = styles.SuccessStyle.Render(styles.PlayingChar)
	}

	title := styles.DimStyle.Render("nothing queued")
	if m.Queue != nil {
		if song, ok := m.Queue.Current(); ok {
			title = styles.TitleStyle.Render(song.DisplayTitle()) +
				styles.DimStyle.Render(fmt.Sprintf("  %s / %s",
					domain.FormatSeconds(int(m.Status.Position)),
					song.FormattedDuration()))
		}
	}

	volume := styles.DimStyle.Render("vol ") +
		styles.RenderProgressBar(float64(m.Status.Volume), volumeBarWidth) +
		styles.DimStyle.Render(fmt.Sprintf(" %3.0f%%", m.Status.Volume*100))

	return " " + state + " " + title + "   " + volume
}

func (m Model) renderBody(height int) string {
	if len(m.visible) == 0 {
		empty := "No songs queued"
		switch {
		case m.filter != "":
			empty = "No matches"
		case m.ActiveView == ViewPlaylists:
			empty = "No playlists"
		case m.ActiveView == ViewPlaylistSongs:
			empty = "Playlist is empty"
		}
		return lipgloss.NewStyle().Height(height).Render(styles.DimStyle.Render("  " + empty))
	}

	cursor := m.cursors[m.ActiveView]
	// Keep the cursor row in view
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := min(start+height, len(m.visible))

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, m.renderRow(m.visible[i], i == cursor))
	}
	return lipgloss.NewStyle().Height(height).Render(strings.Join(rows, "\n"))
}

func (m Model) renderRow(idx int, selected bool) string {
	width := max(m.Width, 20)

	switch m.ActiveView {
	case ViewQueue:
		song := m.Queue.Songs[idx]
		marker := "  "
		var markerFg *lipgloss.Color
		if idx == m.Status.Index {
			marker = styles.PlayingChar + " "
			markerFg = &styles.Amber
		}
		return styles.RenderListRow([]styles.RowPart{
			{Text: marker, Foreground: markerFg},
			{Text: fmt.Sprintf("%3d  ", idx+1)},
			{Text: styles.Truncate(song.DisplayTitle(), width-20)},
			{Text: "  " + song.FormattedDuration()},
		}, selected, width)

	case ViewPlaylists:
		p := m.PlaylistList[idx]
		return styles.RenderListRow([]styles.RowPart{
			{Text: styles.Truncate(p.Name, width-30)},
			{Text: fmt.Sprintf("  %d songs · %s", p.SongCount, p.FormattedDuration())},
		}, selected, width)

	case ViewPlaylistSongs:
		song := m.OpenSongs[idx]
		return styles.RenderListRow([]styles.RowPart{
			{Text: fmt.Sprintf("%3d  ", idx+1)},
			{Text: styles.Truncate(song.DisplayTitle(), width-16)},
			{Text: "  " + song.FormattedDuration()},
		}, selected, width)
	}
	return ""
}

func (m Model) renderFooter() string {
	var left string
	switch {
	case m.State == StateFiltering:
		left = m.filterInput.View()
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.DimStyle.Render(m.StatusMsg)
	case m.filter != "":
		left = styles.FilterPromptStyle.Render("/") + styles.SubtitleStyle.Render(m.filter)
	}

	right := m.help.ShortHelpView(Keys.ShortHelp())

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the full key reference
func (m Model) renderHelp() string {
	h := m.help
	h.ShowAll = true
	return h.View(Keys) + "\n\n" + styles.DimStyle.Render("Press any key to return...")
}

func renderClearConfirmation() string {
	return `
     Clear the jukebox queue?

        [Y] Yes      [N] No
`
}
