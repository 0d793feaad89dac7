package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	require := require.New(t)

	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(err)

	require.Equal("8084", cfg.Server.Port)
	require.Equal("mx160", cfg.Device.Model)
	require.Equal("/dev/ttyUSB0", cfg.Device.URL)
	require.Equal(10*time.Second, cfg.Device.PollInterval)
	require.Equal(84, cfg.Discovery.TCPPort)
	require.False(cfg.Database.Enabled)
	require.Equal("0.0.0.0:8084", cfg.GetServerAddr())
	require.True(cfg.IsDebugEnabled())
}

func TestLoad_FileAndEnv(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(os.WriteFile(path, []byte(`
device:
  model: mx180
  url: socket://192.168.1.40:84
  baud_rate: 9600
  poll_interval: 5s
  sources:
    0: Apple TV
    24: Turntable
logging:
  level: debug
`), 0o644))

	t.Setenv("MCINTOSH_DEVICE_URL", "socket://10.0.0.9:84")
	t.Setenv("MCINTOSH_SERVER_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(err)

	require.Equal("mx180", cfg.Device.Model)
	require.Equal("socket://10.0.0.9:84", cfg.Device.URL)
	require.Equal(9600, cfg.Device.BaudRate)
	require.Equal(5*time.Second, cfg.Device.PollInterval)
	require.Equal("Apple TV", cfg.Device.Sources[0])
	require.Equal("Turntable", cfg.Device.Sources[24])
	require.Equal("debug", cfg.Logging.Level)
	require.Equal("9090", cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: verbose\n"), 0o644))
	_, err = Load(path)
	require.ErrorContains(t, err, "logging.level")

	path = filepath.Join(dir, "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  environment: qa\n"), 0o644))
	_, err = Load(path)
	require.ErrorContains(t, err, "app.environment")
}
