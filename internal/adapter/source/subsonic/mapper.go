package subsonic

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mmcdole/juke/internal/domain"
)

// ParseJukeboxStatus decodes a jukeboxStatus object.
// Wire field gain becomes Volume; currentIndex becomes Index.
func ParseJukeboxStatus(raw json.RawMessage) (*domain.JukeboxStatus, error) {
	var dto jukeboxStatusDTO
	if err := decodeObject(raw, &dto); err != nil {
		return nil, err
	}
	return mapJukeboxStatus(dto)
}

// ParseJukeboxPlaylist decodes a jukeboxPlaylist object. The wire record is
// flat (status fields next to entry); the result regroups it into Status and Songs.
func ParseJukeboxPlaylist(raw json.RawMessage) (*domain.JukeboxPlaylist, error) {
	var dto jukeboxPlaylistDTO
	if err := decodeObject(raw, &dto); err != nil {
		return nil, err
	}

	status, err := mapJukeboxStatus(dto.jukeboxStatusDTO)
	if err != nil {
		return nil, err
	}
	if len(dto.Entry) == 0 {
		return nil, missingField("entry")
	}
	songs, err := ParseSongs(dto.Entry)
	if err != nil {
		return nil, err
	}

	return &domain.JukeboxPlaylist{
		Status: *status,
		Songs:  songs,
	}, nil
}

// ParsePlaylist decodes a playlist summary. Unrecognized fields are ignored.
func ParsePlaylist(raw json.RawMessage) (*domain.Playlist, error) {
	var dto playlistDTO
	if err := decodeObject(raw, &dto); err != nil {
		return nil, err
	}
	return mapPlaylist(dto)
}

// ParsePlaylists decodes an array of playlist summaries, stopping at the first bad element
func ParsePlaylists(raw json.RawMessage) ([]domain.Playlist, error) {
	items, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}
	playlists := make([]domain.Playlist, 0, len(items))
	for i, item := range items {
		p, err := ParsePlaylist(item)
		if err != nil {
			return nil, fmt.Errorf("playlist %d: %w", i, err)
		}
		playlists = append(playlists, *p)
	}
	return playlists, nil
}

// ParseSong decodes a single song ("child") object
func ParseSong(raw json.RawMessage) (*domain.Song, error) {
	var dto songDTO
	if err := decodeObject(raw, &dto); err != nil {
		return nil, err
	}
	return mapSong(dto)
}

// ParseSongs decodes an array of songs. Decoding is fail-fast: the first bad
// element aborts the whole list. An empty array yields an empty, non-nil slice.
func ParseSongs(raw json.RawMessage) ([]domain.Song, error) {
	items, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}
	songs := make([]domain.Song, 0, len(items))
	for i, item := range items {
		s, err := ParseSong(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		songs = append(songs, *s)
	}
	return songs, nil
}

func mapJukeboxStatus(dto jukeboxStatusDTO) (*domain.JukeboxStatus, error) {
	switch {
	case dto.CurrentIndex == nil:
		return nil, missingField("currentIndex")
	case dto.Playing == nil:
		return nil, missingField("playing")
	case dto.Gain == nil:
		return nil, missingField("gain")
	case dto.Position == nil:
		return nil, missingField("position")
	}

	if *dto.Gain < 0 || *dto.Gain > 1 {
		return nil, &domain.ParseError{Field: "gain", Reason: "out of range [0, 1]"}
	}

	return &domain.JukeboxStatus{
		Index:    *dto.CurrentIndex,
		Playing:  *dto.Playing,
		Volume:   *dto.Gain,
		Position: *dto.Position,
	}, nil
}

func mapPlaylist(dto playlistDTO) (*domain.Playlist, error) {
	switch {
	case dto.ID == nil:
		return nil, missingField("id")
	case dto.Name == nil:
		return nil, missingField("name")
	case dto.SongCount == nil:
		return nil, missingField("songCount")
	case dto.Duration == nil:
		return nil, missingField("duration")
	case dto.CoverArt == nil:
		return nil, missingField("coverArt")
	}

	id, err := parseID("id", *dto.ID)
	if err != nil {
		return nil, err
	}

	return &domain.Playlist{
		ID:        id,
		Name:      *dto.Name,
		SongCount: *dto.SongCount,
		Duration:  *dto.Duration,
		Cover:     *dto.CoverArt,
		Owner:     dto.Owner,
		Public:    dto.Public,
		Comment:   dto.Comment,
	}, nil
}

func mapSong(dto songDTO) (*domain.Song, error) {
	switch {
	case dto.ID == nil:
		return nil, missingField("id")
	case dto.Title == nil:
		return nil, missingField("title")
	}

	id, err := parseID("id", *dto.ID)
	if err != nil {
		return nil, err
	}

	return &domain.Song{
		ID:          id,
		Parent:      dto.Parent,
		Title:       *dto.Title,
		Album:       dto.Album,
		Artist:      dto.Artist,
		Track:       dto.Track,
		Year:        dto.Year,
		Genre:       dto.Genre,
		CoverArt:    dto.CoverArt,
		Size:        dto.Size,
		ContentType: dto.ContentType,
		Suffix:      dto.Suffix,
		Duration:    dto.Duration,
		BitRate:     dto.BitRate,
		Path:        dto.Path,
		DiscNumber:  dto.DiscNumber,
		PlayCount:   dto.PlayCount,
		AlbumID:     dto.AlbumID,
		ArtistID:    dto.ArtistID,
		IsDir:       dto.IsDir,
		IsVideo:     dto.IsVideo,
		Type:        dto.Type,
	}, nil
}

// parseID converts a string ID field to an unsigned integer
func parseID(field, value string) (uint64, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, &domain.ParseError{Field: field, Reason: fmt.Sprintf("%q is not a numeric id", value)}
	}
	return id, nil
}

// decodeObject unmarshals raw into dest after checking it is a JSON object
func decodeObject(raw json.RawMessage, dest any) error {
	if !isObject(raw) {
		return &domain.ParseError{Reason: "not an object"}
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return toParseError(err)
	}
	return nil
}

// decodeArray splits a JSON array into its raw elements
func decodeArray(raw json.RawMessage) ([]json.RawMessage, error) {
	if !isArray(raw) {
		return nil, &domain.ParseError{Reason: "not an array"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, toParseError(err)
	}
	return items, nil
}

func missingField(field string) error {
	return &domain.ParseError{Field: field, Reason: "missing"}
}

// toParseError converts encoding/json failures into domain parse errors
func toParseError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		// Embedded DTOs prefix the Go struct name; keep the wire key
		field := typeErr.Field
		if i := strings.LastIndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		return &domain.ParseError{
			Field:  field,
			Reason: fmt.Sprintf("expected %s, got %s", describeType(typeErr.Type), typeErr.Value),
		}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &domain.ParseError{Reason: fmt.Sprintf("invalid JSON at offset %d", syntaxErr.Offset)}
	}
	return &domain.ParseError{Reason: err.Error()}
}

func describeType(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "unsigned integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}
