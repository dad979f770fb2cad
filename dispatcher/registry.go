package dispatcher

import (
	"errors"
	"strings"
	"sync"
)

// ErrInvalidSubscription is returned for a handshake without a participant id.
var ErrInvalidSubscription = errors.New("invalid subscription")

// Conn is one live client connection that can receive event payloads.
type Conn interface {
	Send(payload []byte) error
}

type subscription struct {
	conns  map[Conn]struct{}
	events map[string]struct{}
}

// Registry maps participant ids to their live connections and the event names
// they asked for. The zero value is not usable; call NewRegistry.
type Registry struct {
	mu   sync.Mutex
	subs map[string]*subscription
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]*subscription)}
}

// Subscribe attaches conn to participantID. A second connection for the same
// participant joins the existing entry and its event names are merged in.
func (r *Registry) Subscribe(conn Conn, participantID string, events []string) error {
	if strings.TrimSpace(participantID) == "" {
		return ErrInvalidSubscription
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[participantID]
	if !ok {
		sub = &subscription{conns: make(map[Conn]struct{}), events: make(map[string]struct{})}
		r.subs[participantID] = sub
		logger.Infof("Participant '%s' added", participantID)
	} else {
		logger.Debugf("Participant '%s' already subscribed, adding connection", participantID)
	}
	sub.conns[conn] = struct{}{}
	for _, name := range events {
		sub.events[name] = struct{}{}
	}
	subscribersGauge.Set(float64(len(r.subs)))
	return nil
}

// Unsubscribe detaches conn from every participant it was attached to and
// drops entries left without connections.
func (r *Registry) Unsubscribe(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, sub := range r.subs {
		if _, ok := sub.conns[conn]; !ok {
			continue
		}
		delete(sub.conns, conn)
		if len(sub.conns) == 0 {
			delete(r.subs, id)
			logger.Infof("No more connections for participant '%s'", id)
		}
	}
	subscribersGauge.Set(float64(len(r.subs)))
}

// Targets returns the connections of participantID that subscribed to
// eventName. The slice is a snapshot and safe to use without the lock.
func (r *Registry) Targets(participantID, eventName string) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[participantID]
	if !ok {
		return nil
	}
	if _, ok := sub.events[eventName]; !ok {
		return nil
	}
	conns := make([]Conn, 0, len(sub.conns))
	for c := range sub.conns {
		conns = append(conns, c)
	}
	return conns
}

// Has reports whether participantID has at least one live connection.
func (r *Registry) Has(participantID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[participantID]
	return ok
}

// Len returns the number of subscribed participants.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
