package userflow

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestAuditEventsReachChannelSink(t *testing.T) {
	host := newHostStore()
	sink := NewChannelSink(16)
	engine := newTestEngine(t, host, func(b *Builder) {
		b.WithAuditEnabled(true).WithAuditSink(sink)
	})

	if _, err := engine.Login(context.Background(), LoginData{Identifier: "nobody", Password: "pw"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	select {
	case event := <-sink.Events():
		if event.EventType != auditEventLoginFailure {
			t.Fatalf("event type = %q, want %q", event.EventType, auditEventLoginFailure)
		}
		if event.Identifier != "nobody" {
			t.Fatalf("identifier = %q, want %q", event.Identifier, "nobody")
		}
		if event.Success {
			t.Fatal("failed login must not record success")
		}
		if event.Error != string(auditErrUnknownUser) {
			t.Fatalf("error code = %q, want %q", event.Error, auditErrUnknownUser)
		}
		if event.ID == "" {
			t.Fatal("event should carry an id")
		}
		if event.Timestamp.IsZero() {
			t.Fatal("event should carry a timestamp")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no audit event arrived")
	}
}

func TestAuditEventsNeverCarryPasswords(t *testing.T) {
	host := newHostStore()
	var buf bytes.Buffer
	var mu sync.Mutex
	engine := newTestEngine(t, host, func(b *Builder) {
		b.WithAuditEnabled(true).WithAuditSink(&lockedJSONSink{buf: &buf, mu: &mu})
	})
	registerTestUser(t, engine, host, "alice", "alice@example.com", "Secret123")

	const secret = "Secret123"
	if _, err := engine.Login(context.Background(), LoginData{Identifier: "alice", Password: secret}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := engine.RequestPasswordReset(context.Background(), "alice"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}

	engine.Close()

	mu.Lock()
	out := buf.String()
	mu.Unlock()

	if out == "" {
		t.Fatal("expected audit output")
	}
	if strings.Contains(out, secret) {
		t.Fatal("audit output must never contain a raw password")
	}
	token := strings.TrimPrefix(host.lastLink, engine.config.Reset.LinkBase)
	if token != "" && strings.Contains(out, token) {
		t.Fatal("audit output must never contain a reset token")
	}

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var event AuditEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("audit line is not valid JSON: %v\n%s", err, line)
		}
	}
}

type lockedJSONSink struct {
	buf *bytes.Buffer
	mu  *sync.Mutex
}

func (s *lockedJSONSink) Emit(_ context.Context, event AuditEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Write(data)
	s.buf.WriteByte('\n')
}

func TestAuditDisabledEmitsNothing(t *testing.T) {
	host := newHostStore()
	sink := NewChannelSink(16)
	engine := newTestEngine(t, host, func(b *Builder) {
		b.WithAuditEnabled(false).WithAuditSink(sink)
	})

	if _, err := engine.Login(context.Background(), LoginData{Identifier: "nobody", Password: "pw"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	select {
	case event := <-sink.Events():
		t.Fatalf("unexpected event %q with audit disabled", event.EventType)
	case <-time.After(50 * time.Millisecond):
	}
}

type blockingSink struct {
	release chan struct{}
	once    sync.Once
}

func (s *blockingSink) Emit(context.Context, AuditEvent) {
	<-s.release
}

func (s *blockingSink) Release() {
	s.once.Do(func() { close(s.release) })
}

func TestAuditDispatcherDropsWhenFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event parks the goroutine in the sink, the second fills the
	// buffer, everything after that is dropped.
	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginFailure})
	}

	deadline := time.Now().Add(2 * time.Second)
	for d.Dropped() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped events")
	}

	sink.Release()
	d.Close()
}

func TestAuditDispatcherDrainsOnClose(t *testing.T) {
	sink := NewChannelSink(16)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16, DropIfFull: false}, sink)

	const n = 5
	for i := 0; i < n; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginSuccess})
	}
	d.Close()

	received := 0
	for received < n {
		select {
		case <-sink.Events():
			received++
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d of %d events before timeout", received, n)
		}
	}

	// After close, further emits are silently ignored.
	d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginSuccess})
}

func TestSlogSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	sink := NewSlogSink(logger)

	sink.Emit(context.Background(), AuditEvent{
		ID:        newAuditEventID(),
		EventType: auditEventLoginSuccess,
		Success:   true,
	})
	sink.Emit(context.Background(), AuditEvent{
		ID:         newAuditEventID(),
		EventType:  auditEventLoginFailure,
		Identifier: "alice",
		Success:    false,
		Error:      string(auditErrBadPassword),
	})

	out := buf.String()
	if !strings.Contains(out, "level=INFO") {
		t.Fatal("successful event should log at info")
	}
	if !strings.Contains(out, "level=WARN") {
		t.Fatal("failed event should log at warn")
	}
	if !strings.Contains(out, "identifier=alice") {
		t.Fatal("failed event should carry the identifier")
	}
}
