package handler

import (
	"bufio"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/cliniva/cliniva_backend/internal/service/realtime"
)

const keepAliveInterval = 30 * time.Second

type RealtimeHandler struct {
	reg *realtime.Registry
}

func NewRealtimeHandler(reg *realtime.Registry) *RealtimeHandler {
	return &RealtimeHandler{reg: reg}
}

type sseEvent struct {
	name    string
	payload []byte
}

// sseSession adapts a server-sent-events stream to realtime.Session. Send
// never blocks: a client that stops draining its buffer is reported as dead
// and dropped by the registry.
type sseSession struct {
	id     string
	events chan sseEvent
	done   chan struct{}
	once   sync.Once
}

func newSSESession() *sseSession {
	return &sseSession{
		id:     uuid.NewString(),
		events: make(chan sseEvent, 16),
		done:   make(chan struct{}),
	}
}

func (s *sseSession) ID() string { return s.id }

func (s *sseSession) Send(event string, payload []byte) error {
	select {
	case <-s.done:
		return errors.New("session closed")
	case s.events <- sseEvent{name: event, payload: payload}:
		return nil
	default:
		return errors.New("session buffer full")
	}
}

func (s *sseSession) close() {
	s.once.Do(func() { close(s.done) })
}

// GET /realtime/stream
//
// Registers the connection on the practitioner topic from the query and
// streams appointment events as SSE until the client disconnects.
func (h *RealtimeHandler) Stream(c fiber.Ctx) error {
	owner, err := ownerFromQuery(c)
	if err != nil {
		return badRequest(c, "exactly one of doctor_id and sub_doctor_id is required")
	}

	var topic string
	if owner.DoctorID != nil {
		topic = realtime.TopicDoctor(*owner.DoctorID)
	} else {
		topic = realtime.TopicSubDoctor(*owner.SubDoctorID)
	}

	sess := newSSESession()
	h.reg.Add(topic, sess)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	c.RequestCtx().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			sess.close()
			h.reg.Remove(topic, sess.id)
		}()

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case <-sess.done:
				return
			case ev := <-sess.events:
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, ev.payload)
				if err := w.Flush(); err != nil {
					return
				}
			case <-keepAlive.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
