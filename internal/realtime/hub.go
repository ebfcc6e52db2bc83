// Package realtime fans newly appended chat messages out to websocket subscribers.
package realtime

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

const subscriberBuffer = 64

var (
	ErrHubClosed = errors.New("realtime hub closed")
	ErrBacklog   = errors.New("realtime hub backlog full")
)

// Publisher delivers a payload to every subscriber of a chat.
type Publisher interface {
	Publish(ctx context.Context, chatID string, payload []byte) error
}

type envelope struct {
	chatID  string
	payload []byte
}

// Subscriber receives payloads published to one chat. Slow subscribers lose
// payloads rather than block the hub.
type Subscriber struct {
	chatID string
	send   chan []byte
}

func (s *Subscriber) C() <-chan []byte {
	return s.send
}

// Hub owns the subscriber map from a single goroutine started by Run.
type Hub struct {
	subs       map[string]map[*Subscriber]struct{}
	register   chan *Subscriber
	unregister chan *Subscriber
	broadcast  chan envelope
	done       chan struct{}
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs:       make(map[string]map[*Subscriber]struct{}),
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		broadcast:  make(chan envelope, 256),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "realtime").Logger(),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then closes
// every subscriber channel.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for _, set := range h.subs {
			for s := range set {
				close(s.send)
			}
		}
		h.subs = nil
		close(h.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return

		case s := <-h.register:
			set, ok := h.subs[s.chatID]
			if !ok {
				set = make(map[*Subscriber]struct{})
				h.subs[s.chatID] = set
			}
			set[s] = struct{}{}
			h.log.Debug().Str("chat_id", s.chatID).Int("subscribers", len(set)).Msg("subscribed")

		case s := <-h.unregister:
			set := h.subs[s.chatID]
			if _, ok := set[s]; ok {
				delete(set, s)
				close(s.send)
				if len(set) == 0 {
					delete(h.subs, s.chatID)
				}
			}

		case env := <-h.broadcast:
			for s := range h.subs[env.chatID] {
				select {
				case s.send <- env.payload:
				default:
					h.log.Warn().Str("chat_id", env.chatID).Msg("subscriber buffer full; dropping message")
				}
			}
		}
	}
}

// Subscribe registers interest in chatID. Callers must Unsubscribe when done.
func (h *Hub) Subscribe(ctx context.Context, chatID string) (*Subscriber, error) {
	s := &Subscriber{chatID: chatID, send: make(chan []byte, subscriberBuffer)}
	select {
	case h.register <- s:
		return s, nil
	case <-h.done:
		return nil, ErrHubClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) Unsubscribe(s *Subscriber) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Publish queues payload for local subscribers without blocking.
func (h *Hub) Publish(_ context.Context, chatID string, payload []byte) error {
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}
	select {
	case h.broadcast <- envelope{chatID: chatID, payload: payload}:
		return nil
	default:
		return ErrBacklog
	}
}
