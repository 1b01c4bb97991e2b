package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	// Point the default location at an empty directory.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	f, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:1883", f.Broker.URL)
	assert.Equal(t, "tradfri-bridge", f.Broker.ClientID)
	assert.Equal(t, "tradfri-raw", f.Bridge.TopicPrefix)
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadParsesFullFile(t *testing.T) {
	path := writeConfig(t, `
version: 1
gateway:
  addr: 192.168.1.63:5684
  psk_identity: bridge
  psk: secret
broker:
  url: tcp://broker.local:1883
  client_id: bridge-1
bridge:
  topic_prefix: tradfri
  ping_interval: 90s
  ping_timeout: 45s
  discover_interval: 10m
`)

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.63:5684", f.Gateway.Addr)
	assert.Equal(t, "bridge", f.Gateway.PSKIdentity)
	assert.Equal(t, "secret", f.Gateway.PSK)
	assert.Equal(t, "tcp://broker.local:1883", f.Broker.URL)
	assert.Equal(t, "bridge-1", f.Broker.ClientID)
	assert.Equal(t, "tradfri", f.Bridge.TopicPrefix)
	assert.Equal(t, Duration(90*time.Second), f.Bridge.PingInterval)
	assert.Equal(t, Duration(45*time.Second), f.Bridge.PingTimeout)
	assert.Equal(t, Duration(10*time.Minute), f.Bridge.DiscoverInterval)
	require.NoError(t, f.Validate())
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
gateway:
  addr: 192.168.1.63:5684
`)

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.63:5684", f.Gateway.Addr)
	assert.Equal(t, "tcp://localhost:1883", f.Broker.URL)
	assert.Equal(t, "tradfri-raw", f.Bridge.TopicPrefix)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `
bridge:
  ping_interval: soon
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *File)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(f *File) {},
		},
		{
			name:    "missing broker url",
			mutate:  func(f *File) { f.Broker.URL = "" },
			wantErr: true,
		},
		{
			name:    "psk without identity",
			mutate:  func(f *File) { f.Gateway.PSK = "secret" },
			wantErr: true,
		},
		{
			name: "ping interval below timeout",
			mutate: func(f *File) {
				f.Bridge.PingInterval = Duration(5 * time.Second)
				f.Bridge.PingTimeout = Duration(30 * time.Second)
			},
			wantErr: true,
		},
		{
			name: "valid ping ordering",
			mutate: func(f *File) {
				f.Bridge.PingInterval = Duration(60 * time.Second)
				f.Bridge.PingTimeout = Duration(30 * time.Second)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Default()
			tt.mutate(f)
			err := f.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
