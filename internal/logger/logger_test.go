package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l := Module(New(path, true), "conversation")
	l.Info("handled message", zap.String("customer_id", "15550001"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	require.Contains(t, line, `"message":"handled message"`)
	require.Contains(t, line, `"module":"conversation"`)
	require.Contains(t, line, `"customer_id":"15550001"`)
	require.Contains(t, line, `"level":"INFO"`)
}

func TestDebugNotWrittenToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l := New(path, false)
	l.Debug("noise")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		require.True(t, os.IsNotExist(err))
		return
	}
	require.NotContains(t, string(data), "noise")
}
