package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf).Component("catalog")

	l.Warn("indicator skipped", String("indicator", "CPI"), Int("observations", 3), Error(errors.New("boom")))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "catalog", entry["component"])
	assert.Equal(t, "CPI", entry["indicator"])
	assert.Equal(t, float64(3), entry["observations"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLoggerWritesCompositeFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf)

	reason := struct {
		Code string `json:"code"`
	}{Code: "no_data"}
	l.Info("consumer started", Strings("brokers", []string{"k1:9092", "k2:9092"}), Any("reason", reason))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "k1:9092, k2:9092", entry["brokers"])
	assert.Equal(t, map[string]any{"code": "no_data"}, entry["reason"])
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	assert.Error(t, err)
}

func TestNopDoesNotPanic(t *testing.T) {
	Nop().With(String("k", "v")).Error("ignored")
}
