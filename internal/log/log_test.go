package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilteringBySection(t *testing.T) {
	SetLevel(slog.LevelDebug)
	t.Cleanup(func() { SetLevel(slog.LevelWarn) })

	buf := &bytes.Buffer{}
	logger := New(buf)

	logger.Debug("hidden", "section", "codegen")
	assert.Empty(t, buf.String())

	logger.Debug("shown", "section", SectionInference)
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	logger.With("section", SectionScope).Debug("through with")
	assert.Contains(t, buf.String(), "through with")
	assert.Contains(t, buf.String(), "section=scope")

	buf.Reset()
	logger.Warn("always", "section", "codegen")
	assert.Contains(t, buf.String(), "always")
}

func TestLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf)
	logger.Info("quiet", "section", SectionProgram)
	assert.Empty(t, buf.String())
}
