// internal/protocol/in_memory.go
package protocol

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryTransport is a scripted Transport for tests: command lines
// are matched against prepared replies and every request is recorded.
type InMemoryTransport struct {
	mutex    sync.Mutex
	isOpen   bool
	replies  map[string]string
	Requests []string
}

// NewInMemoryTransport creates an empty scripted transport.
func NewInMemoryTransport() *InMemoryTransport {
	return &InMemoryTransport{
		replies: make(map[string]string),
	}
}

// Script registers the reply returned for an exact command line.
func (t *InMemoryTransport) Script(command, reply string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.replies[command] = reply
}

// Open marks the transport usable.
func (t *InMemoryTransport) Open(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.isOpen = true
	return nil
}

// Close marks the transport closed.
func (t *InMemoryTransport) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.isOpen = false
	return nil
}

// IsOpen reports whether Open has been called.
func (t *InMemoryTransport) IsOpen() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.isOpen
}

// Request records the command and returns the scripted reply.
func (t *InMemoryTransport) Request(ctx context.Context, line string) (string, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.isOpen {
		return "", fmt.Errorf("transport not open")
	}

	t.Requests = append(t.Requests, line)
	if reply, ok := t.replies[line]; ok {
		return reply, nil
	}
	return "ERR: unknown command", nil
}
