package serial

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
)

func fakePorts() ([]*enumerator.PortDetails, error) {
	return []*enumerator.PortDetails{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", SerialNumber: "A10K", Product: ""},
		{Name: "COM4", IsUSB: true, VID: "2341", PID: "0043", Product: "Arduino Uno"},
	}, nil
}

func TestScanner_Scan(t *testing.T) {
	s := NewScannerWithLister(zap.NewNop(), nil, fakePorts)
	require.True(t, s.IsAvailable())
	assert.Equal(t, "serial", s.GetScannerType())

	devices, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 3)

	assert.Equal(t, "/dev/ttyS0", devices[0].URL)
	assert.Equal(t, 0.1, devices[0].Confidence)
	assert.Equal(t, model.ConnectionTypeSerial, devices[0].ConnectionType)

	assert.Equal(t, "/dev/ttyUSB0", devices[1].URL)
	assert.Equal(t, "0403", devices[1].VID)
	assert.Equal(t, "FTDI USB serial adapter", devices[1].Description)
	assert.Equal(t, "A10K", devices[1].SerialNumber)
	assert.Equal(t, 0.5, devices[1].Confidence)

	assert.Equal(t, "serial://COM4", devices[2].URL)
	assert.Equal(t, "Arduino Uno", devices[2].Description)
	assert.Equal(t, 0.3, devices[2].Confidence)
}

func TestScanner_OnlyUSB(t *testing.T) {
	s := NewScannerWithLister(zap.NewNop(), &Config{OnlyUSB: true}, fakePorts)
	devices, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, devices, 2)
}

func TestScanner_ListError(t *testing.T) {
	s := NewScannerWithLister(zap.NewNop(), nil, func() ([]*enumerator.PortDetails, error) {
		return nil, errors.New("permission denied")
	})
	_, err := s.Scan(context.Background())
	assert.ErrorContains(t, err, "permission denied")
}
