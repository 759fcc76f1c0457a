package realtime

import (
	"errors"
	"sync"
	"testing"
)

type fakeSession struct {
	id   string
	mu   sync.Mutex
	got  []string
	fail bool
}

func (s *fakeSession) ID() string { return s.id }

func (s *fakeSession) Send(event string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("gone")
	}
	s.got = append(s.got, event+":"+string(payload))
	return nil
}

func (s *fakeSession) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

func TestRegistryBroadcast(t *testing.T) {
	reg := NewRegistry()
	topic := TopicDoctor(1)

	a := &fakeSession{id: "a"}
	b := &fakeSession{id: "b"}
	other := &fakeSession{id: "c"}
	reg.Add(topic, a)
	reg.Add(topic, b)
	reg.Add(TopicDoctor(2), other)

	sent := reg.Broadcast(topic, "appointment.created", []byte("42"))
	if sent != 2 {
		t.Errorf("Broadcast() = %d, want 2", sent)
	}
	if got := a.received(); len(got) != 1 || got[0] != "appointment.created:42" {
		t.Errorf("session a received %v", got)
	}
	if got := other.received(); len(got) != 0 {
		t.Errorf("other topic received %v", got)
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := NewRegistry()
	topic := TopicSubDoctor("6b9f6c2e")

	s := &fakeSession{id: "a"}
	reg.Add(topic, s)
	if reg.Count(topic) != 1 {
		t.Fatalf("Count() = %d, want 1", reg.Count(topic))
	}

	reg.Remove(topic, "a")
	if reg.Count(topic) != 0 {
		t.Errorf("Count() after remove = %d, want 0", reg.Count(topic))
	}
	// Removing again, or from an unknown topic, is a no-op.
	reg.Remove(topic, "a")
	reg.Remove("nope", "a")

	if sent := reg.Broadcast(topic, "appointment.created", nil); sent != 0 {
		t.Errorf("Broadcast() to empty topic = %d, want 0", sent)
	}
}

func TestBroadcastDropsDeadSessions(t *testing.T) {
	reg := NewRegistry()
	topic := TopicDoctor(1)

	live := &fakeSession{id: "live"}
	dead := &fakeSession{id: "dead", fail: true}
	reg.Add(topic, live)
	reg.Add(topic, dead)

	sent := reg.Broadcast(topic, "appointment.updated", []byte("7"))
	if sent != 1 {
		t.Errorf("Broadcast() = %d, want 1", sent)
	}
	if reg.Count(topic) != 1 {
		t.Errorf("Count() after dead drop = %d, want 1", reg.Count(topic))
	}
}

func TestSplitSubject(t *testing.T) {
	tests := []struct {
		subject string
		event   string
		topic   string
		ok      bool
	}{
		{"cliniva.appointment.created.doctor-1", "appointment.created", "doctor-1", true},
		{"cliniva.appointment.cancelled.subdoctor-abc", "appointment.cancelled", "subdoctor-abc", true},
		{"cliniva.notification.created.doctor-3", "notification.created", "doctor-3", true},
		{"cliniva.payment.received.doctor-1", "", "", false},
		{"other.appointment.created.doctor-1", "", "", false},
		{"cliniva.appointment.created", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			event, topic, ok := splitSubject(tt.subject)
			if ok != tt.ok || event != tt.event || topic != tt.topic {
				t.Errorf("splitSubject(%q) = %q, %q, %v", tt.subject, event, topic, ok)
			}
		})
	}
}
