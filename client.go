package statline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// ErrNameRequired is returned when a named-entity constructor resolves to an empty metric
// name. It indicates a programming mistake at the call site, not a runtime condition.
var ErrNameRequired = errors.New("statline: metric name is required")

// Default configuration values applied by NewClient for zero-valued Opts fields.
const (
	DefaultHost        = "localhost"
	DefaultPort        = 8125
	DefaultIdleTimeout = 1 * time.Second
)

// Opts formalizes configuration options for a Client. The zero value is usable: it emits to a
// local aggregator on the default statsd port with emission enabled.
type Opts struct {
	// Host is the aggregator hostname.
	Host string
	// Port is the aggregator port.
	Port int
	// Prefix, when nonempty, is prepended to every metric name with a "." separator.
	Prefix string
	// Disabled suppresses all transmission and logging until re-enabled at runtime.
	Disabled bool
	// IdleTimeout is the duration after which the ephemeral connection is considered idle
	// and recycled. The connection is unconditionally recycled at 10x this duration.
	IdleTimeout time.Duration
	// Conn is an optional externally owned transport. When supplied, the client never
	// creates, times out, or closes a connection of its own.
	Conn Sender
	// LogEnabled mirrors every transmitted line to LogSink.
	LogEnabled bool
	// LogSink is the mirror target for transmitted lines; defaults to standard output.
	LogSink io.Writer
	// Clock overrides the time source; intended for tests. Defaults to the wall clock.
	Clock clock.Clock
}

// Client is the metrics emission facade. It composes the name formatting pipeline, the
// per-kind emitters, and the transport lifecycle manager, and is the factory for all named
// metric entities.
//
// All configuration is immutable after construction except the enabled and log-mirroring
// flags, which may be toggled at runtime from any goroutine.
type Client struct {
	prefix    string
	clk       clock.Clock
	transport *transportManager
	logSink   io.Writer

	enabled    atomic.Bool
	logEnabled atomic.Bool
}

// NewClient creates a metrics client from the specified options, applying defaults for
// zero-valued fields.
func NewClient(opts Opts) *Client {
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.LogSink == nil {
		opts.LogSink = os.Stdout
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	c := &Client{
		prefix:    opts.Prefix,
		clk:       opts.Clock,
		logSink:   opts.LogSink,
		transport: newTransportManager(opts.Host, opts.Port, opts.IdleTimeout, opts.Conn, opts.Clock),
	}
	c.enabled.Store(!opts.Disabled)
	c.logEnabled.Store(opts.LogEnabled)

	return c
}

// SetEnabled toggles emission at runtime. While disabled, no line is transmitted or logged and
// no connection is created.
func (c *Client) SetEnabled(enabled bool) {
	c.enabled.Store(enabled)
}

// Enabled reads whether emission is currently enabled.
func (c *Client) Enabled() bool {
	return c.enabled.Load()
}

// SetLogEnabled toggles mirroring of transmitted lines to the configured log sink.
func (c *Client) SetLogEnabled(enabled bool) {
	c.logEnabled.Store(enabled)
}

// Close tears down the ephemeral connection and its lifecycle timers, if any. It is a no-op
// when nothing is open or when the transport is externally owned. A subsequent emission
// transparently reopens the connection.
func (c *Client) Close() error {
	return c.transport.Close()
}

// emit is the single write path for all formatted lines: it terminates the line, mirrors it to
// the log sink when mirroring is on, and hands it to the transport. Disabled clients drop the
// line before any of this happens.
func (c *Client) emit(line string) {
	if !c.enabled.Load() {
		return
	}

	line = terminateLine(line)

	if c.logEnabled.Load() {
		fmt.Fprintf(c.logSink, "metric=%s", line)
	}

	c.transport.write([]byte(line))
}

// emitDuration records a duration as a histogram observation of whole rounded milliseconds.
func (c *Client) emitDuration(name string, elapsed time.Duration) {
	c.emit(updateLine(name, kindHistogram, formatValue(roundMillis(elapsed))))
}
