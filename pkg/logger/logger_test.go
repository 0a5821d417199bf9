package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithServiceAttribute(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: INFO, Format: JSON, Output: &buf, Service: "bookings"})

	log.Info("Booking created successfully", "id", "abc")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Booking created successfully", record["msg"])
	assert.Equal(t, "bookings", record[SERVICE])
	assert.Equal(t, "abc", record["id"])
}

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		level      string
		debugShown bool
		warnShown  bool
	}{
		{level: DEBUG, debugShown: true, warnShown: true},
		{level: INFO, debugShown: false, warnShown: true},
		{level: "WARN", debugShown: false, warnShown: true},
		{level: ERROR, debugShown: false, warnShown: false},
		{level: "nonsense", debugShown: false, warnShown: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: tt.level, Output: &buf})

			log.Debug("debug message")
			assert.Equal(t, tt.debugShown, bytes.Contains(buf.Bytes(), []byte("debug message")))

			log.Warn("warn message")
			assert.Equal(t, tt.warnShown, bytes.Contains(buf.Bytes(), []byte("warn message")))
		})
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf}).WithComponent("workflow")

	log.Info("transition")

	assert.Contains(t, buf.String(), `"component":"workflow"`)
}

func TestPrintf(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Format: TEXT})

	log.Printf("writer error: %v", "broker down")

	assert.Contains(t, buf.String(), "writer error: broker down")
	assert.Contains(t, buf.String(), "level=WARN")
}
