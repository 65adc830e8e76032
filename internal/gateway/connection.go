package gateway

import (
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// connection is a single WebSocket client with its session state: a write
// mutex serializing outbound frames and the set of submissions awaiting a
// verdict (for round-trip latency accounting).
type connection struct {
	id   string
	conn net.Conn

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]time.Time // submission_id -> submit time
}

func newConnection(id string, conn net.Conn) *connection {
	return &connection{
		id:      id,
		conn:    conn,
		pending: make(map[string]time.Time),
	}
}

// write sends a WebSocket text frame to this client. The mutex ensures
// concurrent goroutines (read loop vs. NATS result handler) do not
// interleave frame bytes.
func (c *connection) write(data []byte, timeout time.Duration) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if timeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(timeout))
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	return wsutil.WriteServerMessage(c.conn, ws.OpText, data)
}

// trackSubmission records a submission awaiting its verdict.
func (c *connection) trackSubmission(submissionID string) {
	c.pendingMu.Lock()
	c.pending[submissionID] = time.Now()
	c.pendingMu.Unlock()
}

// completeSubmission removes a pending submission and returns how long the
// verdict took, or false if the submission was unknown.
func (c *connection) completeSubmission(submissionID string) (time.Duration, bool) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	start, ok := c.pending[submissionID]
	if !ok {
		return 0, false
	}
	delete(c.pending, submissionID)
	return time.Since(start), true
}

func (c *connection) close() error {
	return c.conn.Close()
}
