package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"statline"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardSender struct {
	mu sync.Mutex
	n  int
}

func (s *discardSender) Send(buf []byte, port int, host string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++

	return len(buf), nil
}

func (s *discardSender) Close() error { return nil }

func TestTimingRecordsRequestDuration(t *testing.T) {
	mock := clock.NewMock()
	buf := &bytes.Buffer{}
	client := statline.NewClient(statline.Opts{
		Conn:       &discardSender{},
		LogEnabled: true,
		LogSink:    buf,
		Clock:      mock,
	})

	handler, err := Timing(client, "http.request", http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			mock.Add(25 * time.Millisecond)
			w.WriteHeader(http.StatusNoContent)
		},
	))
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "metric=http.request:25|h\n", buf.String())
}

func TestTimingEmitsPerRequest(t *testing.T) {
	mock := clock.NewMock()
	buf := &bytes.Buffer{}
	client := statline.NewClient(statline.Opts{
		Conn:       &discardSender{},
		LogEnabled: true,
		LogSink:    buf,
		Clock:      mock,
	})

	handler, err := Timing(client, "http.request", http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {},
	))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	assert.Equal(
		t,
		"metric=http.request:0|h\nmetric=http.request:0|h\nmetric=http.request:0|h\n",
		buf.String(),
	)
}

func TestTimingRequiresName(t *testing.T) {
	client := statline.NewClient(statline.Opts{Conn: &discardSender{}})

	handler, err := Timing(client, "", http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {},
	))
	assert.ErrorIs(t, err, statline.ErrNameRequired)
	assert.Nil(t, handler)
}
