package events

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

type pinged struct{ BaseEvent }

func (pinged) EventName() string { return "test.pinged" }

func TestPublishRunsAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.NewWriter("production", io.Discard))
	var calls atomic.Int32

	for i := 0; i < 3; i++ {
		bus.Subscribe("test.pinged", HandlerFunc(func(ctx context.Context, e Event) error {
			calls.Add(1)
			return nil
		}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, pinged{NewBaseEvent()})
	cancel()
	bus.Wait()

	assert.Equal(t, int32(3), calls.Load())
}

func TestPublishSyncJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)
	first := errors.New("first")
	second := errors.New("second")

	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error { return first }))
	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error { return second }))

	err := bus.PublishSync(context.Background(), pinged{NewBaseEvent()})
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewInMemoryBus(nil)
	bus.Publish(context.Background(), pinged{NewBaseEvent()})
	bus.Wait()
	assert.NoError(t, bus.PublishSync(context.Background(), pinged{NewBaseEvent()}))
}

func TestNewBaseEventStampsIdentity(t *testing.T) {
	a, b := NewBaseEvent(), NewBaseEvent()
	assert.NotEqual(t, a.EventID(), b.EventID())
	assert.Equal(t, "UTC", a.OccurredAt().Location().String())
	assert.False(t, a.OccurredAt().IsZero())
}
