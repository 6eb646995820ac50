package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultLoggerIsUsableWithoutInit(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("hello", zap.String("k", "v"))
		Debug("debug")
		Warn("warn")
		Error("error")
	})
	assert.NotNil(t, GetLogger())
	assert.NotNil(t, Named("test"))
}

func TestBuildRejectsInvalidLevel(t *testing.T) {
	_, err := Build("loud", "json", "stdout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestBuildRejectsInvalidFormat(t *testing.T) {
	_, err := Build("info", "xml", "stdout")
	require.Error(t, err)
}

func TestInitWritesToFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init("info", "json", path))

	Info("Analysis completed", zap.Int("entities", 3))
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"Analysis completed"`)
	assert.Contains(t, string(data), `"entities":3`)
}
