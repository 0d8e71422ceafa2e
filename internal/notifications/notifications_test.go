package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	return r.err
}

func TestDispatcher_Delivers(t *testing.T) {
	rec := &recordingNotifier{}
	d := NewDispatcher(rec, time.Second)

	d.Dispatch(context.Background(), Event{Type: EventUserRegistered, UserID: 3, Email: "a@x.com"})
	d.Wait()

	require.Len(t, rec.events, 1)
	assert.Equal(t, EventUserRegistered, rec.events[0].Type)
	assert.False(t, rec.events[0].OccurredAt.IsZero())
}

func TestDispatcher_SurvivesCancelledRequest(t *testing.T) {
	rec := &recordingNotifier{}
	d := NewDispatcher(rec, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d.Dispatch(ctx, Event{Type: EventTaskCreated, UserID: 1})
	d.Wait()

	assert.Len(t, rec.events, 1)
}

func TestDispatcher_SwallowsErrors(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("broker down")}
	d := NewDispatcher(rec, time.Second)

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), Event{Type: EventTaskCreated, UserID: 1})
		d.Wait()
	})
}

func TestDispatcher_NilSafe(t *testing.T) {
	var d *Dispatcher
	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), Event{Type: EventTaskCreated})
		d.Wait()
	})
}

func TestEncodeEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	msg, err := encodeEvent(Event{
		Type:       EventTaskCreated,
		UserID:     12,
		Data:       map[string]any{"title": "buy milk"},
		OccurredAt: at,
	})
	require.NoError(t, err)

	assert.Equal(t, "12", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventTaskCreated, string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "task.created", decoded["type"])
	assert.Equal(t, float64(12), decoded["user_id"])
}
