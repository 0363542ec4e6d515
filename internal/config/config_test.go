package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitWithMissingFileKeepsDefaults(t *testing.T) {
	Keys.ManagerDepth = 64
	require.NoError(t, Init(filepath.Join(t.TempDir(), "does-not-exist.json")))
	require.Equal(t, 64, Keys.ManagerDepth)
}

func TestInitDecodesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"manager-depth": 128,
		"nats": {"address": "nats://localhost:4222", "subscriptions": [{"subscribe-to": "metrics.*"}]}
	}`), 0o644))

	require.NoError(t, Init(path))
	require.Equal(t, 128, Keys.ManagerDepth)
	require.Equal(t, "nats://localhost:4222", Keys.Nats.Address)
	require.Len(t, Keys.Nats.Subscriptions, 1)
	require.Equal(t, "metrics.*", Keys.Nats.Subscriptions[0].SubscribeTo)
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"manager-depth": "not-a-number"}`), 0o644))

	require.Error(t, Init(path))
}
