package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/juke/internal/domain"
)

func TestParseVolume(t *testing.T) {
	tests := []struct {
		in      string
		want    float32
		wantErr bool
	}{
		{in: "0.4", want: 0.4},
		{in: "40%", want: 0.4},
		{in: "100%", want: 1},
		{in: "0", want: 0},
		{in: "loud", wantErr: true},
		{in: "%", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseVolume(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "7", "3"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 7, 3}, ids)

	_, err = parseIDs([]string{"3", "al-1"})
	assert.ErrorContains(t, err, `"al-1"`)
}

func TestParsePosition(t *testing.T) {
	n, err := parsePosition("5")
	require.NoError(t, err)
	assert.Equal(t, uint(5), n)

	_, err = parsePosition("-1")
	assert.Error(t, err)
}

func TestPrintQueue_MarksCurrent(t *testing.T) {
	var buf bytes.Buffer
	printQueue(&buf, &domain.JukeboxPlaylist{
		Status: domain.JukeboxStatus{Index: 1},
		Songs:  []domain.Song{{ID: 11, Title: "So What"}, {ID: 12, Title: "Naima"}},
	})

	out := buf.String()
	assert.Contains(t, out, "So What")
	assert.Contains(t, out, "Naima")
	assert.Contains(t, out, "▶")
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, &domain.JukeboxStatus{Index: 2, Playing: true, Volume: 0.5, Position: 75})
	assert.Equal(t, "playing  index 2  position 1:15  volume 50%\n", buf.String())
}

// logSink rejects writes once closed, like a closed log file
type logSink struct {
	bytes.Buffer
	closed bool
}

func (s *logSink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, errors.New("write to closed file")
	}
	return s.Buffer.Write(p)
}

func (s *logSink) Close() error {
	s.closed = true
	return nil
}

func TestAppClose_LogsBeforeClosingLogFile(t *testing.T) {
	sink := &logSink{}
	a := &app{
		logger:  slog.New(slog.NewTextHandler(sink, nil)),
		closers: []io.Closer{sink},
	}

	a.close()

	assert.True(t, sink.closed)
	assert.Contains(t, sink.String(), "shutting down")
	assert.Empty(t, a.closers)
}
