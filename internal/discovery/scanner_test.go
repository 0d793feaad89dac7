package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
)

type fakeScanner struct {
	kind      string
	available bool
	devices   []*DiscoveredDevice
	err       error
}

func (f *fakeScanner) Scan(ctx context.Context) ([]*DiscoveredDevice, error) { return f.devices, f.err }
func (f *fakeScanner) GetScannerType() string                                 { return f.kind }
func (f *fakeScanner) IsAvailable() bool                                      { return f.available }

func TestScannerManager_ScanAll(t *testing.T) {
	sm := NewScannerManager(zap.NewNop())
	sm.RegisterScanner(&fakeScanner{kind: "serial", available: true, devices: []*DiscoveredDevice{
		{ConnectionType: model.ConnectionTypeSerial, URL: "/dev/ttyUSB1", Confidence: 0.5},
		{ConnectionType: model.ConnectionTypeSerial, URL: "/dev/ttyS0", Confidence: 0.1},
	}})
	sm.RegisterScanner(&fakeScanner{kind: "tcp", available: true, devices: []*DiscoveredDevice{
		{ConnectionType: model.ConnectionTypeTCP, URL: "socket://10.0.0.5:84", Confidence: 1.0},
	}})
	sm.RegisterScanner(&fakeScanner{kind: "broken", available: true, err: errors.New("boom")})
	sm.RegisterScanner(&fakeScanner{kind: "off", available: false})

	devices, err := sm.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 3)
	assert.Equal(t, "socket://10.0.0.5:84", devices[0].URL)
	assert.Equal(t, "/dev/ttyUSB1", devices[1].URL)
	assert.Equal(t, "/dev/ttyS0", devices[2].URL)

	assert.Equal(t, []string{"broken", "serial", "tcp"}, sm.GetAvailableScanners())
}

func TestScannerManager_ScanByType(t *testing.T) {
	sm := NewScannerManager(zap.NewNop())
	sm.RegisterScanner(&fakeScanner{kind: "off", available: false})

	_, err := sm.ScanByType(context.Background(), "missing")
	assert.Error(t, err)
	_, err = sm.ScanByType(context.Background(), "off")
	assert.Error(t, err)
}
