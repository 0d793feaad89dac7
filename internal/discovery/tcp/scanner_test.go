package tcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
	"mcintosh-service/internal/simulator"
)

func TestScanner_Scan(t *testing.T) {
	sim := simulator.New(zap.NewNop(), simulator.WithModelName("MX170"))
	require.NoError(t, sim.Start("127.0.0.1:0"))
	t.Cleanup(func() { _ = sim.Close() })

	// a listener that never answers
	quiet, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = quiet.Close() })

	s := NewScanner(zap.NewNop(), &Config{
		Hosts:       []string{sim.Addr(), quiet.Addr().String()},
		ConnTimeout: 300 * time.Millisecond,
	})
	require.True(t, s.IsAvailable())

	devices, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)

	assert.Equal(t, model.ConnectionTypeTCP, devices[0].ConnectionType)
	assert.Equal(t, sim.URL(), devices[0].URL)
	assert.Equal(t, "MX170", devices[0].ReportedName)
	assert.True(t, devices[0].Responding)
	assert.Equal(t, 1.0, devices[0].Confidence)
}

func TestScanner_Defaults(t *testing.T) {
	s := NewScanner(zap.NewNop(), nil)
	assert.False(t, s.IsAvailable())
	assert.Equal(t, 84, s.config.Port)
	assert.Equal(t, "tcp", s.GetScannerType())
}
