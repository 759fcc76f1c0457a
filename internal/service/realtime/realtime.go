// Package realtime fans appointment and notification events out to connected
// front-desk and practitioner clients. The registry is explicit state owned
// by the server; every connection is added and removed through it, and
// broadcasts only reach sessions registered under the addressed topic. Events
// raised on other instances arrive through the NATS bridge.
package realtime

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/cliniva/cliniva_backend/pkg/constants"
)

// Session is one connected client. Send must be safe for concurrent use.
type Session interface {
	ID() string
	Send(event string, payload []byte) error
}

// Topic helpers. Receptionist screens register on the topic of the
// practitioner whose queue they watch.
func TopicDoctor(id uint) string      { return fmt.Sprintf("doctor-%d", id) }
func TopicSubDoctor(id string) string { return "subdoctor-" + id }

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

type Registry struct {
	mu       sync.RWMutex
	sessions map[string]map[string]Session // topic -> session id -> session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]map[string]Session)}
}

func (r *Registry) Add(topic string, s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[topic] == nil {
		r.sessions[topic] = make(map[string]Session)
	}
	r.sessions[topic][s.ID()] = s
}

// Remove drops one session from a topic. Unknown topics and ids are no-ops,
// so disconnect paths can call it unconditionally.
func (r *Registry) Remove(topic, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.sessions[topic]; ok {
		delete(m, sessionID)
		if len(m) == 0 {
			delete(r.sessions, topic)
		}
	}
}

// Broadcast sends the event to every session on the topic and reports how
// many were reached. Sessions whose Send fails are dropped.
func (r *Registry) Broadcast(topic, event string, payload []byte) int {
	r.mu.RLock()
	targets := make([]Session, 0, len(r.sessions[topic]))
	for _, s := range r.sessions[topic] {
		targets = append(targets, s)
	}
	r.mu.RUnlock()

	sent := 0
	for _, s := range targets {
		if err := s.Send(event, payload); err != nil {
			slog.Debug("realtime send failed, dropping session", "topic", topic, "session", s.ID(), "err", err)
			r.Remove(topic, s.ID())
			continue
		}
		sent++
	}
	return sent
}

func (r *Registry) Count(topic string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[topic])
}

// ---------------------------------------------------------------------------
// NATS bridge
// ---------------------------------------------------------------------------

// Bridge forwards appointment and notification events from NATS to the local
// registry, so a booking handled by one instance updates screens connected
// to another.
type Bridge struct {
	nc  *nats.Conn
	reg *Registry
	sub *nats.Subscription
}

func NewBridge(nc *nats.Conn, reg *Registry) *Bridge {
	return &Bridge{nc: nc, reg: reg}
}

func (b *Bridge) Start() error {
	sub, err := b.nc.Subscribe(constants.SubjectPrefix+".>", func(msg *nats.Msg) {
		event, topic, ok := splitSubject(msg.Subject)
		if !ok {
			return
		}
		b.reg.Broadcast(topic, event, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe realtime events: %w", err)
	}
	b.sub = sub
	slog.Info("realtime bridge: started")
	return nil
}

func (b *Bridge) Stop() {
	if b.sub != nil {
		if err := b.sub.Unsubscribe(); err != nil {
			slog.Warn("realtime bridge: unsubscribe failed", "err", err)
		}
	}
}

// splitSubject parses "<prefix>.<entity>.<event>.<topic>" into the client
// facing event name and the registry topic. Only appointment and
// notification entities reach the screens.
func splitSubject(subject string) (event, topic string, ok bool) {
	parts := strings.Split(subject, ".")
	if len(parts) != 4 || parts[0] != constants.SubjectPrefix {
		return "", "", false
	}
	if parts[1] != "appointment" && parts[1] != "notification" {
		return "", "", false
	}
	return parts[1] + "." + parts[2], parts[3], true
}
