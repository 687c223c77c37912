package messaging

import (
	"context"
	"maps"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Memory is an in-process Broker. Each (destination, group) pair owns a
// buffered queue; Publish blocks when a queue is full.
type Memory struct {
	mu     sync.RWMutex
	groups map[string]map[string]chan Message
	size   int
	seq    atomic.Uint64
	closed bool
}

// NewMemory builds a Memory broker whose queues hold size messages (default 256).
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 256
	}
	return &Memory{groups: map[string]map[string]chan Message{}, size: size}
}

func (m *Memory) queue(destination, group string) chan Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	byGroup, ok := m.groups[destination]
	if !ok {
		byGroup = map[string]chan Message{}
		m.groups[destination] = byGroup
	}

	q, ok := byGroup[group]
	if !ok {
		q = make(chan Message, m.size)
		byGroup[group] = q
	}

	return q
}

// Publish fans body out to every group subscribed on destination. Messages
// published before any subscription exists are dropped.
func (m *Memory) Publish(ctx context.Context, destination string, body []byte, headers map[string]string) error {
	if destination == "" {
		return ErrDestinationRequired
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	queues := make([]chan Message, 0, len(m.groups[destination]))
	for _, q := range m.groups[destination] {
		queues = append(queues, q)
	}
	m.mu.RUnlock()

	msg := Message{
		ID:          strconv.FormatUint(m.seq.Add(1), 10),
		Destination: destination,
		Body:        append([]byte(nil), body...),
		Headers:     maps.Clone(headers),
		Timestamp:   time.Now(),
	}

	for _, q := range queues {
		select {
		case q <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// Subscribe consumes the group queue. A failed message is put back once at
// the tail of the queue.
func (m *Memory) Subscribe(ctx context.Context, source, group string, h Handler) error {
	if err := check(source, h); err != nil {
		return err
	}

	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	q := m.queue(source, group)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-q:
			if err := invoke(ctx, DriverMemory, h, msg); err != nil && msg.Headers[redeliveredHeader] == "" {
				retry := msg
				retry.Headers = maps.Clone(msg.Headers)
				if retry.Headers == nil {
					retry.Headers = map[string]string{}
				}
				retry.Headers[redeliveredHeader] = "1"
				select {
				case q <- retry:
				default:
				}
			}
		}
	}
}

const redeliveredHeader = "x-redelivered"

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
