package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Conn is one live client session. UserID is empty for anonymous
// connections. A Conn is created on handshake accept and destroyed on
// disconnect, error, or send failure; it is never reused.
//
// Delivery is a non-blocking enqueue onto Outbound; the transport's
// writer pump drains it under a per-frame write deadline. A full queue
// is treated as a dead client.
type Conn struct {
	ID       string
	UserID   string
	Outbound chan Message

	handle int64
	done   chan struct{}
	once   sync.Once
}

func NewConn(userID string, queueSize int) *Conn {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Conn{
		ID:       uuid.NewString(),
		UserID:   userID,
		Outbound: make(chan Message, queueSize),
		done:     make(chan struct{}),
	}
}

// Done is closed when the connection has been unregistered. Outbound
// itself is never closed so concurrent broadcasters can keep their
// non-blocking sends safe.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) close() {
	c.once.Do(func() { close(c.done) })
}
