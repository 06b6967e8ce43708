package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: "warn"})
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("quote refresh failed", "class", "crypto")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "quote refresh failed", rec["msg"])
	assert.Equal(t, "crypto", rec["class"])
	assert.Equal(t, "WARN", rec["level"])
}

func TestNew_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: "debug", Format: "text"})
	require.NoError(t, err)

	l.Debug("tick", "class", "equities")
	assert.Contains(t, buf.String(), "msg=tick")
	assert.Contains(t, buf.String(), "class=equities")
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(&bytes.Buffer{}, Options{Format: "xml"})
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, Options{Level: "loud"})
	assert.Error(t, err)
}
