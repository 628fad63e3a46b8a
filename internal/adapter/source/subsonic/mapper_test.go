package subsonic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/juke/internal/domain"
)

func requireParseError(t *testing.T, err error, field string) *domain.ParseError {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)
	var pe *domain.ParseError
	require.True(t, errors.As(err, &pe), "expected *domain.ParseError, got %T: %v", err, err)
	assert.Equal(t, field, pe.Field)
	return pe
}

func songJSON(id string, title string) string {
	return fmt.Sprintf(`{"id":%q,"title":%q,"artist":"Artist %s","album":"Album","duration":215,"track":3,"isDir":false}`, id, title, id)
}

func TestParseJukeboxStatus(t *testing.T) {
	st, err := ParseJukeboxStatus(json.RawMessage(`{"currentIndex":2,"playing":true,"gain":0.5,"position":42}`))
	require.NoError(t, err)
	assert.Equal(t, domain.JukeboxStatus{Index: 2, Playing: true, Volume: 0.5, Position: 42}, *st)
}

func TestParseJukeboxStatus_NegativeIndex(t *testing.T) {
	st, err := ParseJukeboxStatus(json.RawMessage(`{"currentIndex":-1,"playing":false,"gain":0,"position":0}`))
	require.NoError(t, err)
	assert.Equal(t, -1, st.Index)
	assert.False(t, st.HasCurrent(0))
}

func TestParseJukeboxStatus_MissingField(t *testing.T) {
	full := map[string]any{"currentIndex": 0, "playing": false, "gain": 0.3, "position": 7}
	for _, field := range []string{"currentIndex", "playing", "gain", "position"} {
		t.Run(field, func(t *testing.T) {
			obj := map[string]any{}
			for k, v := range full {
				if k != field {
					obj[k] = v
				}
			}
			raw, err := json.Marshal(obj)
			require.NoError(t, err)

			_, err = ParseJukeboxStatus(raw)
			pe := requireParseError(t, err, field)
			assert.Equal(t, "missing", pe.Reason)
		})
	}
}

func TestParseJukeboxStatus_GainOutOfRange(t *testing.T) {
	for _, gain := range []string{"1.5", "-0.1"} {
		_, err := ParseJukeboxStatus(json.RawMessage(`{"currentIndex":0,"playing":false,"gain":` + gain + `,"position":0}`))
		requireParseError(t, err, "gain")
	}
}

func TestParseJukeboxStatus_WrongType(t *testing.T) {
	_, err := ParseJukeboxStatus(json.RawMessage(`{"currentIndex":0,"playing":"yes","gain":0.1,"position":0}`))
	pe := requireParseError(t, err, "playing")
	assert.Contains(t, pe.Reason, "boolean")
}

func TestParseJukeboxPlaylist_WrongType(t *testing.T) {
	tests := map[string]string{
		"playing":  `{"currentIndex":0,"playing":"no","gain":0.5,"position":0,"entry":[]}`,
		"position": `{"currentIndex":0,"playing":false,"gain":0.5,"position":-1,"entry":[]}`,
	}
	for field, raw := range tests {
		t.Run(field, func(t *testing.T) {
			_, err := ParseJukeboxPlaylist(json.RawMessage(raw))
			requireParseError(t, err, field)
		})
	}
}

func TestParseJukeboxStatus_NotAnObject(t *testing.T) {
	for _, raw := range []string{`[]`, `"status"`, `42`, ``} {
		_, err := ParseJukeboxStatus(json.RawMessage(raw))
		pe := requireParseError(t, err, "")
		assert.Equal(t, "not an object", pe.Reason)
	}
}

func TestParseJukeboxPlaylist_RegroupsFlatRecord(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("%d entries", n), func(t *testing.T) {
			entries := make([]string, n)
			for i := range entries {
				entries[i] = songJSON(fmt.Sprint(100+i), fmt.Sprintf("Song %d", i))
			}
			raw := fmt.Sprintf(`{"currentIndex":1,"playing":true,"gain":0.75,"position":12,"entry":[%s]}`,
				strings.Join(entries, ","))

			pl, err := ParseJukeboxPlaylist(json.RawMessage(raw))
			require.NoError(t, err)
			require.NotNil(t, pl.Songs)
			assert.Len(t, pl.Songs, n)
			assert.Equal(t, domain.JukeboxStatus{Index: 1, Playing: true, Volume: 0.75, Position: 12}, pl.Status)
			for i, s := range pl.Songs {
				assert.Equal(t, uint64(100+i), s.ID)
				assert.Equal(t, fmt.Sprintf("Song %d", i), s.Title)
			}
		})
	}
}

func TestParseJukeboxPlaylist_MissingEntry(t *testing.T) {
	_, err := ParseJukeboxPlaylist(json.RawMessage(`{"currentIndex":0,"playing":false,"gain":0.5,"position":0}`))
	pe := requireParseError(t, err, "entry")
	assert.Equal(t, "missing", pe.Reason)
}

func TestParseJukeboxPlaylist_MissingStatusField(t *testing.T) {
	_, err := ParseJukeboxPlaylist(json.RawMessage(`{"currentIndex":0,"playing":false,"position":0,"entry":[]}`))
	requireParseError(t, err, "gain")
}

func TestParseJukeboxPlaylist_FailsFastOnBadSong(t *testing.T) {
	raw := fmt.Sprintf(`{"currentIndex":0,"playing":false,"gain":0.5,"position":0,"entry":[%s,%s,%s]}`,
		songJSON("1", "ok"), songJSON("abc", "bad"), songJSON("3", "never reached"))

	_, err := ParseJukeboxPlaylist(json.RawMessage(raw))
	requireParseError(t, err, "id")
	assert.Contains(t, err.Error(), "entry 1")
}

func TestParseSong(t *testing.T) {
	raw := `{"id":"42","parent":"7","title":"Blue in Green","album":"Kind of Blue","artist":"Miles Davis",
		"track":3,"year":1959,"genre":"Jazz","coverArt":"al-7","size":5400000,"contentType":"audio/flac",
		"suffix":"flac","duration":337,"bitRate":900,"path":"Miles/Kind of Blue/03.flac","discNumber":1,
		"playCount":12,"albumId":"7","artistId":"3","isDir":false,"isVideo":false,"type":"music","starred":"2020-01-01"}`

	s, err := ParseSong(json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, domain.Song{
		ID: 42, Parent: "7", Title: "Blue in Green", Album: "Kind of Blue", Artist: "Miles Davis",
		Track: 3, Year: 1959, Genre: "Jazz", CoverArt: "al-7", Size: 5400000, ContentType: "audio/flac",
		Suffix: "flac", Duration: 337, BitRate: 900, Path: "Miles/Kind of Blue/03.flac", DiscNumber: 1,
		PlayCount: 12, AlbumID: "7", ArtistID: "3", Type: "music",
	}, *s)
	assert.Equal(t, "5:37", s.FormattedDuration())
	assert.Equal(t, "Miles Davis - Blue in Green", s.DisplayTitle())
}

func TestParseSong_NonNumericID(t *testing.T) {
	_, err := ParseSong(json.RawMessage(`{"id":"2f8a-c1","title":"x"}`))
	pe := requireParseError(t, err, "id")
	assert.Contains(t, pe.Reason, "not a numeric id")
}

func TestParseSong_MissingTitle(t *testing.T) {
	_, err := ParseSong(json.RawMessage(`{"id":"1"}`))
	requireParseError(t, err, "title")
}

func TestParseSongs_EmptyArray(t *testing.T) {
	songs, err := ParseSongs(json.RawMessage(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, songs)
	assert.Empty(t, songs)
}

func TestParseSongs_NotAnArray(t *testing.T) {
	_, err := ParseSongs(json.RawMessage(`{"id":"1","title":"x"}`))
	pe := requireParseError(t, err, "")
	assert.Equal(t, "not an array", pe.Reason)
}

func TestParsePlaylist(t *testing.T) {
	raw := `{"id":"15","name":"Road Trip","songCount":24,"duration":5460,"coverArt":"pl-15",
		"owner":"alice","public":true,"comment":"summer","created":"2021-06-01T00:00:00Z","allowedUser":["bob"]}`

	p, err := ParsePlaylist(json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, domain.Playlist{
		ID: 15, Name: "Road Trip", SongCount: 24, Duration: 5460, Cover: "pl-15",
		Owner: "alice", Public: true, Comment: "summer",
	}, *p)
	assert.Equal(t, "1h 31m", p.FormattedDuration())
}

func TestParsePlaylist_MissingField(t *testing.T) {
	full := map[string]any{"id": "1", "name": "n", "songCount": 1, "duration": 60, "coverArt": "c"}
	for _, field := range []string{"id", "name", "songCount", "duration", "coverArt"} {
		t.Run(field, func(t *testing.T) {
			obj := map[string]any{}
			for k, v := range full {
				if k != field {
					obj[k] = v
				}
			}
			raw, err := json.Marshal(obj)
			require.NoError(t, err)

			_, err = ParsePlaylist(raw)
			requireParseError(t, err, field)
		})
	}
}

func TestParsePlaylists(t *testing.T) {
	raw := `[
		{"id":"1","name":"A","songCount":2,"duration":300,"coverArt":"pl-1"},
		{"id":"2","name":"B","songCount":0,"duration":0,"coverArt":"pl-2"}
	]`
	playlists, err := ParsePlaylists(json.RawMessage(raw))
	require.NoError(t, err)
	require.Len(t, playlists, 2)
	assert.Equal(t, "A", playlists[0].Name)
	assert.Equal(t, uint64(2), playlists[1].ID)
}

func TestParsePlaylists_BadElement(t *testing.T) {
	raw := `[{"id":"1","name":"A","songCount":2,"duration":300,"coverArt":"pl-1"},{"id":"x","name":"B","songCount":0,"duration":0,"coverArt":"pl-2"}]`
	_, err := ParsePlaylists(json.RawMessage(raw))
	requireParseError(t, err, "id")
	assert.Contains(t, err.Error(), "playlist 1")
}
