package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devaloi/meowww/internal/domain"
	"github.com/devaloi/meowww/internal/hub"
	tu "github.com/devaloi/meowww/internal/testutil"
)

var _ hub.Observer = (*Metrics)(nil)

func TestMetricsObserveHub(t *testing.T) {
	t.Parallel()
	m := New()
	h := hub.New(hub.Options{HistoryCapacity: 10, Observer: m})

	ep := tu.NewMockEndpoint()
	hs := hub.NewHandoff()
	hs.Resolve(ep)
	hub.Mutate(h, "general", hub.AddConnection(hs))
	hub.Mutate(h, "general", hub.AddMessage(domain.Message{Nickname: "a", Content: "hi"}))

	bad := hub.NewHandoff()
	bad.Fail()
	hub.Mutate(h, "other", hub.AddConnection(bad))
	hub.Mutate(h, "other", hub.Probe())
	h.Sweep()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.created))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rooms))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.messages))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.connections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pruned))
}

func TestMetricsHandler(t *testing.T) {
	t.Parallel()
	m := New()
	m.MessageAccepted("general")
	m.Broadcast("general", 1, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), "meowww_messages_total 1")
	assert.Contains(t, string(body), "meowww_broadcast_seconds_count 1")
	assert.Contains(t, string(body), "go_goroutines")
}
