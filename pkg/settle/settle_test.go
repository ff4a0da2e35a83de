package settle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelayWaits(t *testing.T) {
	start := time.Now()
	err := Delay(20 * time.Millisecond).Settle(context.Background())

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestDelayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Delay(time.Hour).Settle(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelayCancelledMidWait(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Delay(time.Hour).Settle(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Minute)
}

func TestNone(t *testing.T) {
	assert.NoError(t, None.Settle(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, None.Settle(ctx), context.Canceled)
}

func TestCounter(t *testing.T) {
	c := &Counter{}
	_ = c.Settle(context.Background())
	_ = c.Settle(context.Background())
	assert.Equal(t, 2, c.Calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Next = Delay(time.Hour)
	assert.ErrorIs(t, c.Settle(ctx), context.Canceled)
	assert.Equal(t, 3, c.Calls)
}
