package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	// Test with limit
	c := NewController(Config{MemoryLimitBytes: 100})

	// Acquire 50
	err := c.AcquireMemory(50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), c.MemoryUsage())

	// Acquire 40
	err = c.AcquireMemory(40)
	require.NoError(t, err)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 (should fail - limit exceeded)
	err = c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Release 50
	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	// Now Acquire 20 should succeed
	err = c.AcquireMemory(20)
	require.NoError(t, err)
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	err := c.AcquireMemory(1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())

	// Non-positive amounts are ignored
	require.NoError(t, c.AcquireMemory(-1))
	c.ReleaseMemory(0)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Slots(t *testing.T) {
	c := NewController(Config{MaxInFlight: 2})

	// Acquire 2
	require.NoError(t, c.AcquireSlot(t.Context()))
	require.NoError(t, c.AcquireSlot(t.Context()))
	assert.Equal(t, int64(2), c.InFlight())

	// Try 3rd
	assert.False(t, c.TryAcquireSlot())

	// Blocking acquire honors the context
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireSlot(ctx), context.DeadlineExceeded)
	assert.Equal(t, int64(2), c.InFlight())

	// Release 1
	c.ReleaseSlot()

	// Try 3rd again
	assert.True(t, c.TryAcquireSlot())
	assert.Equal(t, int64(2), c.InFlight())
}

func TestController_UnlimitedSlots(t *testing.T) {
	c := NewController(Config{})
	for i := 0; i < 100; i++ {
		require.True(t, c.TryAcquireSlot())
	}
	assert.Equal(t, int64(100), c.InFlight())
}

func TestController_Admission(t *testing.T) {
	c := NewController(Config{AdmissionRate: 1, AdmissionBurst: 1})

	assert.True(t, c.TryAdmit())
	assert.False(t, c.TryAdmit(), "bucket is empty until the next second")

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.Admit(ctx))
}

func TestController_AdmissionDefaultBurst(t *testing.T) {
	c := NewController(Config{AdmissionRate: 3})
	for i := 0; i < 3; i++ {
		require.True(t, c.TryAdmit())
	}
	assert.False(t, c.TryAdmit())
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMemory(10))
	c.ReleaseMemory(10)
	assert.Zero(t, c.MemoryUsage())
	assert.Zero(t, c.MemoryLimit())
	assert.NoError(t, c.AcquireSlot(t.Context()))
	assert.True(t, c.TryAcquireSlot())
	c.ReleaseSlot()
	assert.Zero(t, c.InFlight())
	assert.NoError(t, c.Admit(t.Context()))
	assert.True(t, c.TryAdmit())
}
