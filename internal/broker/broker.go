// Package broker fans chat thread updates out to every subscriber, across
// server instances when Redis is configured.
package broker

import (
	"context"
	"errors"
)

// ErrClosed is returned by a broker after Close
var ErrClosed = errors.New("broker: closed")

// Broker is a topic-based pub/sub. Delivery is best effort.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe delivers payloads published on topic until ctx is cancelled,
	// then closes the returned channel.
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
	Close() error
}

// ChatTopic is the channel announcing changes to one parent's thread
func ChatTopic(userID string) string {
	return "chats:" + userID
}
