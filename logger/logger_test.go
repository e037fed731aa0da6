package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf).WithFields(Fields{"item": "abc", "page": 2})

	log.Info().Msg("Scraping page")

	var entry map[string]interface{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["item"])
	assert.Equal(t, float64(2), entry["page"])
	assert.Equal(t, "Scraping page", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestForComponent(t *testing.T) {
	var buf bytes.Buffer
	saved := Default
	Default = New(&buf)
	defer func() { Default = saved }()

	ForImages().Warn().Msg("Failed to download image")

	var entry map[string]interface{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "images", entry["component"])
	assert.Equal(t, "warn", entry["level"])
}
