package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("prod writes json and skips debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(EnvProd, &buf)
		log.Debug("hidden")
		log.Info("visible", "key", "value")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "visible", line["msg"])
		assert.Equal(t, "value", line["key"])
	})

	t.Run("local writes debug as text", func(t *testing.T) {
		var buf bytes.Buffer
		New(EnvLocal, &buf).Debug("details")
		assert.Contains(t, buf.String(), "msg=details")
	})
}
