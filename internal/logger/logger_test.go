package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	Init()
	assert.NotNil(t, log)
}

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Info("booking recorded", "user_id", 7)

	output := buf.String()
	assert.Contains(t, output, "booking recorded")
	assert.Contains(t, output, "user_id")
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Error("storage failure")

	assert.Contains(t, buf.String(), "storage failure")
}

func TestDebug(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	log = New(NewJSONHandler(&buf, opts))

	Debug("rule evaluated")

	assert.Contains(t, buf.String(), "rule evaluated")
}

func TestInfof(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Infof("processed %d upgrades", 3)

	assert.Contains(t, buf.String(), "processed 3 upgrades")
}

func TestErrorf(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Errorf("commit failed: %s", "trial exhausted")

	assert.Contains(t, buf.String(), "commit failed: trial exhausted")
}
