package broker

import (
	"context"
	"sync"
)

const memoryBuffer = 16

// Memory is an in-process Broker used when no Redis address is configured
type Memory struct {
	mu     sync.RWMutex
	subs   map[string]map[chan []byte]struct{}
	closed bool
}

// NewMemory creates an empty in-process broker
func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[chan []byte]struct{})}
}

// Publish hands payload to every current subscriber of topic. Slow
// subscribers whose buffer is full miss the message.
func (m *Memory) Publish(ctx context.Context, topic string, payload []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	for ch := range m.subs[topic] {
		select {
		case ch <- payload:
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	ch := make(chan []byte, memoryBuffer)
	if m.subs[topic] == nil {
		m.subs[topic] = make(map[chan []byte]struct{})
	}
	m.subs[topic][ch] = struct{}{}

	go func() {
		<-ctx.Done()
		m.unsubscribe(topic, ch)
	}()
	return ch, nil
}

func (m *Memory) unsubscribe(topic string, ch chan []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[topic][ch]; !ok {
		return
	}
	delete(m.subs[topic], ch)
	if len(m.subs[topic]) == 0 {
		delete(m.subs, topic)
	}
	close(ch)
}

// Subscribers reports how many subscriptions topic has
func (m *Memory) Subscribers(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs[topic])
}

// Close ends every subscription
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for topic, set := range m.subs {
		for ch := range set {
			close(ch)
		}
		delete(m.subs, topic)
	}
	return nil
}
