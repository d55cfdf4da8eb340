package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "planned", "moves", 3)
	log.Error(ctx, "reconcile failed", "op", "swap")

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "msg=planned", "moves=3", "level=ERROR", "op=swap"} {
		assert.Contains(t, out, want)
	}
}

func TestNew_JSONWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Format: FormatJSON, Level: slog.LevelInfo, Attrs: []any{"service", "gridserver"}})

	log.With("container_id", "c1").Warn(context.Background(), "gap detected", "at", 4)
	log.Debug(context.Background(), "filtered")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec), "exactly one record: %s", buf.String())
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "gap detected", rec["msg"])
	assert.Equal(t, "gridserver", rec["service"])
	assert.Equal(t, "c1", rec["container_id"])
	assert.EqualValues(t, 4, rec["at"])
}

func TestNew_UnknownFormatIsJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{Format: "xml"}).Info(context.Background(), "hi")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]string{"": FormatJSON, "json": FormatJSON, "text": FormatText} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, `unknown log format "xml"`)
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Error(context.Background(), "nothing")
	log.With("k", "v").Warn(context.Background(), "nothing")
}
