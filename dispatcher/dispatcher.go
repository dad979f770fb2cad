// Package dispatcher forwards committed chaincode events to the WebSocket
// connections of the participants named in each event's targetAudience.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("energytrading.dispatcher")

// ErrSourceClosed is returned by Run when the event source stops producing.
var ErrSourceClosed = errors.New("event source closed")

// Event is a committed chaincode event.
type Event struct {
	Name        string
	Payload     []byte
	TxID        string
	BlockNumber uint64
}

// EventSource yields committed events in commit order. The channel is closed
// when the source shuts down.
type EventSource interface {
	Events() <-chan Event
	Close() error
}

type audience struct {
	TargetAudience []string `json:"targetAudience"`
}

// Dispatcher drains an EventSource and fans each event out through a Registry.
type Dispatcher struct {
	registry *Registry
	source   EventSource
}

func New(registry *Registry, source EventSource) *Dispatcher {
	return &Dispatcher{registry: registry, source: source}
}

// Run consumes events one at a time until ctx is done or the source closes.
func (d *Dispatcher) Run(ctx context.Context) error {
	events := d.source.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ErrSourceClosed
			}
			d.Deliver(ev)
		}
	}
}

// Deliver sends the payload of ev, unchanged, to every connection of every
// participant in its targetAudience that subscribed to ev.Name. Conn.Send
// must not block; a slow connection drops the payload instead. It returns the
// number of accepted sends. A participant listed twice is sent twice.
func (d *Dispatcher) Deliver(ev Event) int {
	eventsReceivedTotal.WithLabelValues(ev.Name).Inc()

	var a audience
	if err := json.Unmarshal(ev.Payload, &a); err != nil {
		payloadErrorsTotal.Inc()
		logger.Warningf("Dropping %s event of tx '%s': %s", ev.Name, ev.TxID, fmt.Errorf("decode payload: %w", err))
		return 0
	}

	sent := 0
	for _, participantID := range a.TargetAudience {
		for _, conn := range d.registry.Targets(participantID, ev.Name) {
			if err := conn.Send(ev.Payload); err != nil {
				deliveryFailuresTotal.WithLabelValues(ev.Name).Inc()
				logger.Warningf("Failed to send %s event to participant '%s': %s", ev.Name, participantID, err)
				continue
			}
			deliveriesTotal.WithLabelValues(ev.Name).Inc()
			sent++
		}
	}
	logger.Debugf("%s event of tx '%s' (block %d) delivered to %d connection(s)", ev.Name, ev.TxID, ev.BlockNumber, sent)
	return sent
}
