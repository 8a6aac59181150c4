package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorayamlj/FocusTache/internal/infrastructure/buffer"
)

func TestMonitor_RefreshTracksStoreChecks(t *testing.T) {
	storeErr := errors.New("down")
	var failStore bool
	checks := []Check{
		{Name: "sqlite", Store: true, Ping: func(context.Context) error {
			if failStore {
				return storeErr
			}
			return nil
		}},
		{Name: "redis", Ping: func(context.Context) error { return storeErr }},
	}

	buf, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { buf.Close() })

	mon := New(checks, buf, 0, nil)
	assert.False(t, mon.IsOnline())

	mon.Refresh()
	assert.True(t, mon.IsOnline())
	status := mon.GetStatus()
	assert.Equal(t, map[string]bool{"sqlite": true, "redis": false}, status.Services)
	assert.True(t, status.Buffer)
	assert.False(t, status.Healthy())

	status.Services["sqlite"] = false
	assert.True(t, mon.GetStatus().Services["sqlite"])

	failStore = true
	mon.Refresh()
	assert.False(t, mon.IsOnline())
}

func TestMonitor_NoBufferAndNilPing(t *testing.T) {
	mon := New([]Check{{Name: "broken"}}, nil, 0, nil)
	mon.Refresh()

	status := mon.GetStatus()
	assert.False(t, status.Buffer)
	assert.False(t, status.Services["broken"])
	assert.True(t, mon.IsOnline())

	mon.Start()
	mon.Stop()
	mon.Stop()
}
