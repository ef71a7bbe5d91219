package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tenant-admin/backend/internal/telemetry/domain"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*domain.Event
	emitErr error
	done    chan struct{}
}

func (m *mockEventEmitter) Emit(ctx context.Context, event *domain.Event) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.done != nil {
		m.done <- struct{}{}
	}
	return m.emitErr
}

func (m *mockEventEmitter) getEvents() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

func TestEmitAsync_NilEmitter(t *testing.T) {
	// Should not panic
	EmitAsync(nil, context.Background(), &domain.Event{EventType: domain.EventLogout})
}

func TestEmitAsync_NilEvent(t *testing.T) {
	m := &mockEventEmitter{}
	EmitAsync(m, context.Background(), nil)
	time.Sleep(10 * time.Millisecond)
	if len(m.getEvents()) != 0 {
		t.Error("nil event should not be emitted")
	}
}

func TestEmitAsync_Delivers(t *testing.T) {
	m := &mockEventEmitter{done: make(chan struct{}, 1)}
	ev := &domain.Event{UserID: "u1", EventType: domain.EventLoginSucceeded}
	EmitAsync(m, context.Background(), ev)

	select {
	case <-m.done:
	case <-time.After(time.Second):
		t.Fatal("event not emitted")
	}
	if got := m.getEvents(); len(got) != 1 || got[0] != ev {
		t.Errorf("events = %v", got)
	}
}

func TestEmitAsync_CanceledRequestContext(t *testing.T) {
	m := &mockEventEmitter{done: make(chan struct{}, 1), emitErr: errors.New("collector down")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	EmitAsync(m, ctx, &domain.Event{EventType: domain.EventLogout})

	select {
	case <-m.done:
	case <-time.After(time.Second):
		t.Fatal("emit should run even when the request context is canceled")
	}
}
