package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormat_IncludesAppAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Info, Format: FormatJSON, App: "siam-adherence", Output: &buf})

	log.With(map[string]any{"request_id": "r-1"}).Info("dose registered", map[string]any{
		"medication_id": 7,
		"err":           errors.New("boom"),
		"":              "dropped",
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dose registered", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "siam-adherence", entry["app"])
	assert.Equal(t, "r-1", entry["request_id"])
	assert.Equal(t, "boom", entry["err"])
	assert.EqualValues(t, 7, entry["medication_id"])
	assert.Contains(t, entry, "ts")
	assert.NotContains(t, entry, "")
}

func TestLevelFiltersLowerEntries(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Warn, Output: &buf})

	log.Info("hidden", nil)
	log.Debug("hidden", nil)
	log.Warn("visible", nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestParseLevelAndFormat(t *testing.T) {
	cases := map[string]Level{"debug": Debug, "": Info, "WARNING": Warn, "error": Error, "loud": Info}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
	assert.Equal(t, FormatJSON, ParseFormat(" JSON "))
	assert.Equal(t, FormatText, ParseFormat("yaml"))
}
