package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var seen []string
	dispatcher.Subscribe(EventAccountLogin, func(_ context.Context, event Event) error {
		seen = append(seen, "first:"+event.Username)
		return nil
	})
	dispatcher.Subscribe(EventAccountLogin, func(_ context.Context, event Event) error {
		seen = append(seen, "second:"+event.Username)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{
		Type:      EventAccountLogin,
		Username:  "bob",
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:bob", "second:bob"}, seen)
}

func TestDispatcherFailingHandlerDoesNotStopOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var called bool
	dispatcher.Subscribe(EventAccountDeactivated, func(context.Context, Event) error {
		return errors.New("handler failure")
	})
	dispatcher.Subscribe(EventAccountDeactivated, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventAccountDeactivated}))
	assert.True(t, called)
}

func TestDispatcherUnknownEventTypeIsNoop(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventAccountRegistered}))
}
