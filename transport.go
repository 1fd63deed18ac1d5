package statline

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Sender is the transport contract required of the underlying datagram socket. Sends are
// fire-and-forget from this library's perspective: any reported error is discarded.
type Sender interface {
	// Send transmits a single datagram to the specified destination.
	Send(buf []byte, port int, host string) (int, error)

	// Close closes the underlying socket.
	Close() error
}

const (
	// idleCheckInterval is the period of the recurring idle sweep on an ephemeral
	// connection.
	idleCheckInterval = 250 * time.Millisecond

	// forcedCloseFactor scales the idle timeout into the unconditional recycle deadline,
	// which bounds the lifetime of any outstanding send buffers held by the socket.
	forcedCloseFactor = 10
)

// transportManager owns the connection used for transmission. A caller-supplied Sender is
// passed through untouched with no lifecycle management; otherwise an ephemeral UDP socket is
// created lazily on first send, recycled once idle past the configured timeout, recycled
// unconditionally at 10x the timeout, and transparently recreated by the next send after any
// close. Connection-level errors are swallowed so a failed send never perturbs the caller.
type transportManager struct {
	host     string
	port     int
	timeout  time.Duration
	clk      clock.Clock
	external Sender
	dial     func() (Sender, error)

	mu      sync.Mutex
	conn    Sender
	lastUse time.Time
	idle    *clock.Ticker
	force   *clock.Timer
	// done releases the current lifecycle goroutine when the connection closes out from
	// under it, e.g. via an explicit Close.
	done chan struct{}
	// gen identifies the current ephemeral connection so a lifecycle goroutine from a
	// previous connection can never tear down its successor.
	gen uint64
}

func newTransportManager(host string, port int, timeout time.Duration, external Sender, clk clock.Clock) *transportManager {
	return &transportManager{
		host:     host,
		port:     port,
		timeout:  timeout,
		clk:      clk,
		external: external,
		dial:     dialUDP,
	}
}

// write transmits a single line, creating the ephemeral connection first if necessary. The
// send itself is asynchronous; its outcome is not surfaced.
func (m *transportManager) write(line []byte) {
	conn := m.acquire()
	if conn == nil {
		return
	}

	go func() {
		_, _ = conn.Send(line, m.port, m.host)
	}()
}

// acquire returns the connection to send on, or nil when one could not be created. The
// caller-supplied connection, when present, short-circuits all lifecycle management.
func (m *transportManager) acquire() Sender {
	if m.external != nil {
		return m.external
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		conn, err := m.dial()
		if err != nil {
			// The send is dropped; delivery is best-effort.
			return nil
		}

		m.conn = conn
		m.startLifecycleLocked()
	}

	m.lastUse = m.clk.Now()

	return m.conn
}

// startLifecycleLocked arms the idle sweep and the forced-close deadline for a newly created
// ephemeral connection. Both run detached and never keep foreground work waiting.
func (m *transportManager) startLifecycleLocked() {
	m.gen++
	gen := m.gen

	m.idle = m.clk.Ticker(idleCheckInterval)
	m.force = m.clk.Timer(forcedCloseFactor * m.timeout)
	m.done = make(chan struct{})
	idle, force, done := m.idle, m.force, m.done

	go func() {
		for {
			select {
			case <-done:
				return
			case <-idle.C:
				m.mu.Lock()
				if m.gen != gen {
					m.mu.Unlock()
					return
				}
				if m.clk.Now().Sub(m.lastUse) > m.timeout {
					m.closeLocked()
					m.mu.Unlock()
					return
				}
				m.mu.Unlock()
			case <-force.C:
				m.mu.Lock()
				if m.gen == gen {
					// Recycled regardless of recent use, to bound buffer
					// retention.
					m.closeLocked()
				}
				m.mu.Unlock()
				return
			}
		}
	}()
}

// Close closes the ephemeral connection, if any, and cancels both lifecycle timers. It is safe
// to call when nothing is open, and never touches an externally owned connection.
func (m *transportManager) Close() error {
	if m.external != nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()

	return nil
}

func (m *transportManager) closeLocked() {
	if m.conn == nil {
		return
	}

	m.idle.Stop()
	m.force.Stop()
	close(m.done)
	m.idle = nil
	m.force = nil
	m.done = nil

	_ = m.conn.Close()
	m.conn = nil
	m.gen++
}

// udpSender is the default ephemeral transport: an unconnected datagram socket that resolves
// its destination per send.
type udpSender struct {
	conn net.PacketConn
}

func dialUDP() (Sender, error) {
	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, fmt.Errorf("transport: error opening datagram socket: err=%v", err)
	}

	return &udpSender{conn: conn}, nil
}

// Send transmits a single datagram to host:port.
func (s *udpSender) Send(buf []byte, port int, host string) (int, error) {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return 0, err
	}

	return s.conn.WriteTo(buf, addr)
}

// Close closes the underlying socket.
func (s *udpSender) Close() error {
	return s.conn.Close()
}
