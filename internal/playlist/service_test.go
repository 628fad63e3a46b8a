package playlist

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/juke/internal/domain"
)

type fakeTransport struct {
	docs     map[string]string // by endpoint
	err      error
	endpoint string
	params   url.Values
}

func (f *fakeTransport) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	f.endpoint = endpoint
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.docs[endpoint]), nil
}

const playlistDoc = `{"subsonic-response":{"status":"ok","playlist":{
	"id":"15","name":"Road Trip","songCount":2,"duration":420,"coverArt":"pl-15","owner":"alice",
	"entry":[{"id":"3","title":"One","artist":"A"},{"id":"7","title":"Two","artist":"B"}]}}}`

func TestService_Content(t *testing.T) {
	tr := &fakeTransport{docs: map[string]string{"getPlaylist": playlistDoc}}
	svc := NewService(tr, nil)

	songs, err := svc.Content(context.Background(), 15)
	require.NoError(t, err)
	assert.Equal(t, "getPlaylist", tr.endpoint)
	assert.Equal(t, url.Values{"id": {"15"}}, tr.params)
	require.Len(t, songs, 2)
	assert.Equal(t, uint64(3), songs[0].ID)
	assert.Equal(t, "Two", songs[1].Title)
}

func TestService_Songs(t *testing.T) {
	tr := &fakeTransport{docs: map[string]string{"getPlaylist": playlistDoc}}
	svc := NewService(tr, nil)

	songs, err := svc.Songs(context.Background(), domain.Playlist{ID: 15})
	require.NoError(t, err)
	assert.Len(t, songs, 2)
	assert.Equal(t, "15", tr.params.Get("id"))
}

func TestService_ContentMissingEntry(t *testing.T) {
	tr := &fakeTransport{docs: map[string]string{"getPlaylist": `{"subsonic-response":{"status":"ok","playlist":{"id":"1","name":"x","songCount":0,"duration":0,"coverArt":""}}}`}}
	_, err := NewService(tr, nil).Content(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Contains(t, err.Error(), "no entries found")
}

func TestService_ContentEntryNotArray(t *testing.T) {
	tr := &fakeTransport{docs: map[string]string{"getPlaylist": `{"subsonic-response":{"status":"ok","playlist":{"entry":{"id":"1","title":"x"}}}}`}}
	_, err := NewService(tr, nil).Content(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Contains(t, err.Error(), "not an array")
}

func TestService_ContentFailsFast(t *testing.T) {
	tr := &fakeTransport{docs: map[string]string{"getPlaylist": `{"subsonic-response":{"status":"ok","playlist":{"entry":[{"id":"1","title":"a"},{"id":"nope","title":"b"}]}}}`}}
	_, err := NewService(tr, nil).Content(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Contains(t, err.Error(), "entry 1")
}

func TestService_Get(t *testing.T) {
	tr := &fakeTransport{docs: map[string]string{"getPlaylist": playlistDoc}}
	p, songs, err := NewService(tr, nil).Get(context.Background(), 15)
	require.NoError(t, err)
	assert.Equal(t, domain.Playlist{ID: 15, Name: "Road Trip", SongCount: 2, Duration: 420, Cover: "pl-15", Owner: "alice"}, *p)
	assert.Len(t, songs, 2)
}

func TestService_GetEmptyPlaylist(t *testing.T) {
	tr := &fakeTransport{docs: map[string]string{"getPlaylist": `{"subsonic-response":{"status":"ok","playlist":{"id":"4","name":"Empty","songCount":0,"duration":0,"coverArt":"pl-4"}}}`}}
	p, songs, err := NewService(tr, nil).Get(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Empty", p.Name)
	assert.NotNil(t, songs)
	assert.Empty(t, songs)
}

func TestService_GetMissingEntryWithSongs(t *testing.T) {
	tr := &fakeTransport{docs: map[string]string{"getPlaylist": `{"subsonic-response":{"status":"ok","playlist":{"id":"4","name":"x","songCount":3,"duration":0,"coverArt":"pl-4"}}}`}}
	_, _, err := NewService(tr, nil).Get(context.Background(), 4)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestService_GetMissingPlaylist(t *testing.T) {
	tr := &fakeTransport{docs: map[string]string{"getPlaylist": `{"subsonic-response":{"status":"ok"}}`}}
	_, _, err := NewService(tr, nil).Get(context.Background(), 4)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestService_List(t *testing.T) {
	tr := &fakeTransport{docs: map[string]string{"getPlaylists": `{"subsonic-response":{"status":"ok","playlists":{"playlist":[
		{"id":"1","name":"Morning","songCount":5,"duration":1200,"coverArt":"pl-1"},
		{"id":"2","name":"Evening","songCount":8,"duration":2400,"coverArt":"pl-2","public":true}]}}}`}}
	svc := NewService(tr, nil)

	playlists, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "getPlaylists", tr.endpoint)
	assert.Empty(t, tr.params, "no username for the caller's own playlists")
	require.Len(t, playlists, 2)
	assert.Equal(t, "Evening", playlists[1].Name)
	assert.True(t, playlists[1].Public)

	_, err = svc.List(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, url.Values{"username": {"bob"}}, tr.params)
}

func TestService_ListNone(t *testing.T) {
	tr := &fakeTransport{docs: map[string]string{"getPlaylists": `{"subsonic-response":{"status":"ok","playlists":{}}}`}}
	playlists, err := NewService(tr, nil).List(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, playlists)
	assert.Empty(t, playlists)
}

func TestService_ListMissingPlaylists(t *testing.T) {
	tr := &fakeTransport{docs: map[string]string{"getPlaylists": `{"subsonic-response":{"status":"ok"}}`}}
	_, err := NewService(tr, nil).List(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestService_TransportError(t *testing.T) {
	tr := &fakeTransport{err: &domain.APIError{Code: domain.APICodeNotFound, Message: "Playlist not found"}}
	_, err := NewService(tr, nil).Content(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestService_Filter(t *testing.T) {
	svc := NewService(&fakeTransport{}, nil)
	playlists := []domain.Playlist{
		{ID: 1, Name: "Workout Mix"},
		{ID: 2, Name: "Sunday Morning"},
		{ID: 3, Name: "Morning Jazz"},
	}

	assert.Equal(t, playlists, svc.Filter(playlists, ""))

	got := svc.Filter(playlists, "morning")
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []uint64{2, 3}, []uint64{got[0].ID, got[1].ID})

	assert.Empty(t, svc.Filter(playlists, "zzz"))
}
