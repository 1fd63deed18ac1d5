package statline

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender is an in-memory Sender recording every datagram handed to it.
type fakeSender struct {
	mu     sync.Mutex
	sent   []string
	closed bool
}

func (s *fakeSender) Send(buf []byte, port int, host string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, string(buf))

	return len(buf), nil
}

func (s *fakeSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true

	return nil
}

func (s *fakeSender) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.sent...)
}

func (s *fakeSender) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// newTestClient creates a client with an external fake transport, a mocked clock, and log
// mirroring into a buffer, so emissions are observable synchronously.
func newTestClient(t *testing.T, prefix string) (*Client, *fakeSender, *bytes.Buffer, *clock.Mock) {
	t.Helper()

	sender := &fakeSender{}
	buf := &bytes.Buffer{}
	mock := clock.NewMock()

	client := NewClient(Opts{
		Prefix:     prefix,
		Conn:       sender,
		LogEnabled: true,
		LogSink:    buf,
		Clock:      mock,
	})

	return client, sender, buf, mock
}

// mirrored extracts the emitted lines from the log mirror buffer, in emission order.
func mirrored(buf *bytes.Buffer) []string {
	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if line == "" {
			continue
		}
		lines = append(lines, strings.TrimPrefix(line, "metric="))
	}

	return lines
}

func TestClientDefaults(t *testing.T) {
	client := NewClient(Opts{Conn: &fakeSender{}})

	assert.True(t, client.Enabled())
	assert.Equal(t, DefaultHost, client.transport.host)
	assert.Equal(t, DefaultPort, client.transport.port)
	assert.Equal(t, DefaultIdleTimeout, client.transport.timeout)
}

func TestCounterEmission(t *testing.T) {
	client, _, buf, _ := newTestClient(t, "")

	counter, err := client.Counter("hits")
	require.NoError(t, err)

	counter.Update(5)
	counter.Increment()
	counter.Decrement()
	counter.Update(-4)
	counter.Delete()

	assert.Equal(t, []string{
		"hits:5|c",
		"hits:1|c",
		"hits:-1|c",
		"hits:-4|c",
		"hits:delete|c",
	}, mirrored(buf))
}

func TestGaugeOverwriteSemantics(t *testing.T) {
	client, _, buf, _ := newTestClient(t, "")

	gauge, err := client.Gauge("numThings")
	require.NoError(t, err)

	// Gauges are absolute: consecutive updates do not accumulate.
	gauge.Update(10)
	gauge.Update(5)

	assert.Equal(t, []string{"numThings:10|g", "numThings:5|g"}, mirrored(buf))
}

func TestHistogramEmission(t *testing.T) {
	client, _, buf, _ := newTestClient(t, "")

	histogram, err := client.Histogram("rtt")
	require.NoError(t, err)

	histogram.Update(12.5)
	histogram.Delete()

	assert.Equal(t, []string{"rtt:12.5|h", "rtt:delete|h"}, mirrored(buf))
}

func TestMeterWithPrefix(t *testing.T) {
	client, _, buf, _ := newTestClient(t, "prod")

	meter, err := client.Meter("visitors")
	require.NoError(t, err)

	meter.Mark()
	meter.Delete()

	assert.Equal(t, []string{"prod.visitors", "prod.visitors:delete"}, mirrored(buf))
}

func TestPrefixAndWhitespaceSanitization(t *testing.T) {
	client, _, buf, _ := newTestClient(t, "prod")

	counter, err := client.Counter("my  metric")
	require.NoError(t, err)
	assert.Equal(t, "prod.my_metric", counter.Name())

	counter.Update(1)
	assert.Equal(t, []string{"prod.my_metric:1|c"}, mirrored(buf))
}

func TestFactoriesRequireName(t *testing.T) {
	client, _, _, _ := newTestClient(t, "prod")

	_, err := client.Counter("")
	assert.ErrorIs(t, err, ErrNameRequired)
	_, err = client.Gauge("")
	assert.ErrorIs(t, err, ErrNameRequired)
	_, err = client.Histogram("")
	assert.ErrorIs(t, err, ErrNameRequired)
	_, err = client.Meter("")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestFactoryNameFormatting(t *testing.T) {
	client, _, buf, _ := newTestClient(t, "")

	counter, err := client.Counter("requests.%s.%d", "GET", 200)
	require.NoError(t, err)
	assert.Equal(t, "requests.GET.200", counter.Name())

	counter.Update(2)
	assert.Equal(t, []string{"requests.GET.200:2|c"}, mirrored(buf))
}

func TestExternalSenderReceivesTerminatedLines(t *testing.T) {
	client, sender, _, _ := newTestClient(t, "")

	gauge, err := client.Gauge("numThings")
	require.NoError(t, err)
	gauge.Update(10)

	require.Eventually(t, func() bool {
		return len(sender.lines()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"numThings:10|g\n"}, sender.lines())
}

func TestDisabledClientEmitsNothing(t *testing.T) {
	client, sender, buf, _ := newTestClient(t, "")
	client.SetEnabled(false)

	counter, err := client.Counter("hits")
	require.NoError(t, err)
	counter.Update(1)

	meter, err := client.Meter("visits")
	require.NoError(t, err)
	meter.Mark()

	// Nothing is transmitted or logged while disabled.
	assert.Empty(t, sender.lines())
	assert.Empty(t, buf.String())

	// Re-enabling restores emission.
	client.SetEnabled(true)
	counter.Update(1)
	assert.Equal(t, []string{"hits:1|c"}, mirrored(buf))
}

func TestDisabledClientNeverDials(t *testing.T) {
	mock := clock.NewMock()
	client := NewClient(Opts{Disabled: true, Clock: mock})

	dials := 0
	client.transport.dial = func() (Sender, error) {
		dials++
		return &fakeSender{}, nil
	}

	counter, err := client.Counter("hits")
	require.NoError(t, err)
	counter.Update(1)

	assert.Zero(t, dials)

	client.SetEnabled(true)
	counter.Update(1)
	assert.Equal(t, 1, dials)
}

func TestLogMirrorToggle(t *testing.T) {
	client, _, buf, _ := newTestClient(t, "")
	client.SetLogEnabled(false)

	counter, err := client.Counter("hits")
	require.NoError(t, err)
	counter.Update(1)
	assert.Empty(t, buf.String())

	client.SetLogEnabled(true)
	counter.Update(2)
	assert.Equal(t, "metric=hits:2|c\n", buf.String())
}

func TestCloseWithExternalSenderIsNoop(t *testing.T) {
	client, sender, _, _ := newTestClient(t, "")

	require.NoError(t, client.Close())
	assert.False(t, sender.isClosed())
}
