package bridge

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/statsbridge/pkg/events"
	"github.com/carverauto/statsbridge/pkg/models"
	"github.com/carverauto/statsbridge/pkg/wire"
)

const interval = 2 * time.Second

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// recordHandler keeps every log record so tests can count them.
type recordHandler struct {
	mu   sync.Mutex
	msgs []string
}

func (h *recordHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	h.msgs = append(h.msgs, r.Message)
	h.mu.Unlock()

	return nil
}

func (h *recordHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordHandler) count(msg string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0

	for _, m := range h.msgs {
		if m == msg {
			n++
		}
	}

	return n
}

type staticProvider struct {
	reading models.Reading
}

func (p staticProvider) Read() models.Reading { return p.reading }

type panicProvider struct{}

func (panicProvider) Read() models.Reading { panic("host unloaded mid-read") }

func steelReading() models.Reading {
	return models.Reading{
		Samples: map[string]models.ResourceSample{
			"steel": {ID: "steel", Balance: 12},
			"coal":  {ID: "coal", Balance: 3.5},
		},
		Provider: "ProductsManager (reflection)",
		Method:   "GetStatsFor(proto).GlobalQuantity.Value",
		Items:    2,
		Bound:    true,
	}
}

type fixture struct {
	bridge *Bridge
	clock  *fakeClock
	logs   *recordHandler
}

func newFixture(t *testing.T, cfg Config, p StateProvider, opts ...Option) *fixture {
	t.Helper()

	if cfg.Interval == 0 {
		cfg.Interval = interval
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	f := &fixture{clock: newFakeClock(), logs: &recordHandler{}}

	opts = append([]Option{WithClock(f.clock.Now), WithLogger(slog.New(f.logs))}, opts...)

	b, err := New(cfg, p, opts...)
	require.NoError(t, err)

	t.Cleanup(b.Close)

	f.bridge = b

	return f
}

// settle ticks until the outstanding call, if any, has been collected.
func (f *fixture) settle(t *testing.T) {
	t.Helper()

	require.Eventually(t, func() bool {
		f.bridge.Tick()
		return !f.bridge.Diagnostics().InFlight
	}, 3*time.Second, time.Millisecond)
}

// cycle runs one full scheduled cycle.
func (f *fixture) cycle(t *testing.T) {
	t.Helper()

	f.bridge.Tick()
	require.True(t, f.bridge.Diagnostics().InFlight, "cycle did not start")
	f.settle(t)
	f.clock.Advance(f.bridge.cfg.Interval)
}

func probeServer(t *testing.T, code *atomic.Int32, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)

		w.WriteHeader(int(code.Load()))
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func TestStatusTracker_LogsOnlyChanges(t *testing.T) {
	logs := &recordHandler{}
	tr := statusTracker{current: models.StatusUnknown, log: slog.New(logs)}

	var changes []models.StatusChange

	for _, s := range []models.Status{
		models.StatusOffline,
		models.StatusOffline,
		models.StatusOnline,
		models.StatusOnline,
		models.StatusError,
	} {
		if c, ok := tr.set(s, "", time.Time{}); ok {
			changes = append(changes, c)
		}
	}

	assert.Equal(t, 3, logs.count("connectivity status changed"))
	require.Len(t, changes, 3)
	assert.Equal(t, models.StatusUnknown, changes[0].From)
	assert.Equal(t, models.StatusOffline, changes[0].To)
	assert.Equal(t, models.StatusOnline, changes[1].To)
	assert.Equal(t, models.StatusError, changes[2].To)
}

func TestBridge_UnboundStillPublishesEmptySnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := events.NewMockPublisher(ctrl)

	var code atomic.Int32
	code.Store(http.StatusOK)

	srv, _ := probeServer(t, &code, "")

	provider := NewMockStateProvider(ctrl)
	provider.EXPECT().Read().Return(models.Reading{
		Provider: "ProductsManager (reflection)",
		Method:   "binding pending (load a save)",
	})

	var got models.Snapshot

	pub.EXPECT().PublishStatus(gomock.Any()).Times(1)
	pub.EXPECT().PublishSnapshot(gomock.Any()).Do(func(s models.Snapshot) { got = s })

	f := newFixture(t, Config{ProbeURL: srv.URL + "/health"}, provider, WithPublisher(pub))
	f.cycle(t)

	assert.Equal(t, int64(0), got.Tick)
	assert.NotNil(t, got.Resources)
	assert.Empty(t, got.Resources)

	d := f.bridge.Diagnostics()
	assert.Equal(t, `{"ts":1700000000000,"tick":0,"resources":{}}`, d.LastPayload)
	assert.Equal(t, "binding pending (load a save)", d.Method)
	assert.Equal(t, models.StatusOnline, d.Status)
}

func TestBridge_ProbeSuccessCountsRemoteResources(t *testing.T) {
	var code atomic.Int32
	code.Store(http.StatusServiceUnavailable)

	srv, _ := probeServer(t, &code, `{"resources":{"steel":1,"coal":1}}`)

	f := newFixture(t, Config{ProbeURL: srv.URL + "/health"}, staticProvider{steelReading()})

	f.cycle(t)
	require.Error(t, f.bridge.LastError())
	assert.Equal(t, models.StatusError, f.bridge.Status())
	assert.Equal(t, "unexpected status: 503 Service Unavailable", f.bridge.Diagnostics().LastError)

	code.Store(http.StatusOK)
	f.cycle(t)

	d := f.bridge.Diagnostics()
	assert.Equal(t, models.StatusOnline, d.Status)
	assert.Equal(t, 2, d.RemoteResources)
	assert.Empty(t, d.LastError)
	assert.NoError(t, f.bridge.LastError())
	assert.Equal(t, 2, d.Items)
	assert.Equal(t, "ProductsManager (reflection)", d.Provider)
	assert.False(t, d.LastReportAt.IsZero())
}

func TestBridge_TransitionLoggingAcrossCycles(t *testing.T) {
	var code atomic.Int32
	code.Store(http.StatusOK)

	srv, _ := probeServer(t, &code, `{"resources":{}}`)

	f := newFixture(t, Config{ProbeURL: srv.URL + "/health"}, staticProvider{steelReading()})

	f.cycle(t)
	f.cycle(t)

	code.Store(http.StatusInternalServerError)
	f.cycle(t)
	f.cycle(t)

	assert.Equal(t, models.StatusError, f.bridge.Status())
	assert.Equal(t, 2, f.logs.count("connectivity status changed"))
}

func TestBridge_InvalidProbeBody(t *testing.T) {
	var code atomic.Int32
	code.Store(http.StatusOK)

	srv, _ := probeServer(t, &code, "<html>ok</html>")

	f := newFixture(t, Config{ProbeURL: srv.URL + "/health"}, staticProvider{steelReading()})
	f.cycle(t)

	assert.Equal(t, models.StatusError, f.bridge.Status())
	assert.ErrorIs(t, f.bridge.LastError(), ErrInvalidResponse)
}

func TestBridge_OneCallInFlight(t *testing.T) {
	var hits atomic.Int32

	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newFixture(t, Config{ProbeURL: srv.URL + "/health", Timeout: 5 * time.Second}, staticProvider{steelReading()})

	f.bridge.Tick()
	require.Eventually(t, func() bool { return hits.Load() == 1 }, 2*time.Second, time.Millisecond)

	for range 20 {
		f.clock.Advance(interval)
		f.bridge.ForceProbe()
		f.bridge.Tick()
	}

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, int64(1), f.bridge.Diagnostics().NextTick)

	close(release)
	f.settle(t)
	assert.Equal(t, models.StatusOnline, f.bridge.Status())

	f.clock.Advance(interval)
	f.bridge.Tick()
	require.Eventually(t, func() bool { return hits.Load() == 2 }, 2*time.Second, time.Millisecond)
	f.settle(t)
}

func TestBridge_TimeoutRetriesOnSchedule(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newFixture(t, Config{ProbeURL: srv.URL + "/health", Timeout: 50 * time.Millisecond}, staticProvider{steelReading()})

	f.bridge.Tick()
	f.settle(t)

	assert.Equal(t, models.StatusError, f.bridge.Status())
	require.ErrorIs(t, f.bridge.LastError(), ErrTimeout)
	assert.NotEmpty(t, f.bridge.Diagnostics().LastError)

	f.bridge.Tick()
	f.clock.Advance(interval - time.Millisecond)
	f.bridge.Tick()
	assert.False(t, f.bridge.Diagnostics().InFlight)
	assert.Equal(t, int32(1), hits.Load())

	f.clock.Advance(time.Millisecond)
	f.bridge.Tick()
	assert.True(t, f.bridge.Diagnostics().InFlight)
	f.settle(t)
	assert.Equal(t, int32(2), hits.Load())
}

func TestBridge_ForceProbeWhileOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/health"
	srv.Close()

	f := newFixture(t, Config{ProbeURL: url, Interval: 10 * time.Second}, staticProvider{steelReading()})

	f.bridge.Tick()
	f.settle(t)
	require.Equal(t, models.StatusOffline, f.bridge.Status())
	assert.ErrorIs(t, f.bridge.LastError(), ErrTransport)

	f.clock.Advance(time.Second)
	f.bridge.Tick()
	assert.False(t, f.bridge.Diagnostics().InFlight)

	f.bridge.ForceProbe()
	f.bridge.Tick()
	assert.True(t, f.bridge.Diagnostics().InFlight)
}

func TestBridge_ReportPostsSerializedSnapshot(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies [][]byte
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ingest", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	hub := events.NewHub(slog.New(&recordHandler{}))

	var ticks []int64

	sub := hub.OnSnapshot(func(s models.Snapshot) { ticks = append(ticks, s.Tick) })
	defer sub.Close()

	f := newFixture(t, Config{Mode: models.ModeReport, IngestURL: srv.URL + "/ingest"},
		staticProvider{steelReading()}, WithPublisher(hub))

	f.cycle(t)
	f.cycle(t)

	assert.Equal(t, []int64{0, 1}, ticks)
	assert.Equal(t, models.StatusOnline, f.bridge.Status())

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, bodies, 2)

	p, err := wire.Decode(bodies[0])
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Tick)
	assert.Equal(t, int64(1_700_000_000_000), p.TS)
	assert.Equal(t, map[string]float64{"steel": 12, "coal": 3.5}, p.Resources)

	d := f.bridge.Diagnostics()
	assert.Equal(t, models.ModeReport, d.Mode)
	assert.Equal(t, srv.URL+"/ingest", d.Endpoint)
	assert.Equal(t, len(bodies[1]), d.PayloadBytes)
}

func TestBridge_SerializationFaultSkipsCycle(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	pub := events.NewMockPublisher(ctrl) // no calls expected

	bad := steelReading()
	bad.Samples["ghost"] = models.ResourceSample{ID: "ghost", Balance: math.NaN()}

	f := newFixture(t, Config{Mode: models.ModeReport, IngestURL: srv.URL + "/ingest"},
		staticProvider{bad}, WithPublisher(pub))

	f.bridge.Tick()

	d := f.bridge.Diagnostics()
	assert.False(t, d.InFlight)
	assert.Equal(t, models.StatusUnknown, d.Status)
	assert.Equal(t, int64(0), d.NextTick)
	assert.ErrorIs(t, f.bridge.LastError(), ErrSerialization)
	assert.ErrorIs(t, f.bridge.LastError(), wire.ErrNonFiniteValue)

	f.bridge.Tick()
	assert.Equal(t, int32(0), hits.Load())
}

func TestBridge_ProviderPanicIsContained(t *testing.T) {
	var code atomic.Int32
	code.Store(http.StatusOK)

	srv, _ := probeServer(t, &code, "")

	f := newFixture(t, Config{ProbeURL: srv.URL + "/health"}, panicProvider{})

	require.NotPanics(t, func() { f.cycle(t) })

	d := f.bridge.Diagnostics()
	assert.Equal(t, models.StatusOnline, d.Status)
	assert.Contains(t, d.Method, "panicked")
	assert.Equal(t, `{"ts":1700000000000,"tick":0,"resources":{}}`, d.LastPayload)
}

func TestBridge_CloseDropsLateCompletion(t *testing.T) {
	release := make(chan struct{})

	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	ctrl := gomock.NewController(t)
	pub := events.NewMockPublisher(ctrl) // no calls expected

	f := newFixture(t, Config{ProbeURL: srv.URL + "/health", Timeout: 5 * time.Second},
		staticProvider{steelReading()}, WithPublisher(pub))

	f.bridge.Tick()
	require.Eventually(t, func() bool { return hits.Load() == 1 }, 2*time.Second, time.Millisecond)

	f.bridge.Close()
	f.bridge.Close()

	time.Sleep(20 * time.Millisecond)
	f.clock.Advance(interval)
	f.bridge.Tick()

	d := f.bridge.Diagnostics()
	assert.Equal(t, models.StatusUnknown, d.Status)
	assert.False(t, d.InFlight)
	assert.Equal(t, int32(1), hits.Load())
}

func TestBridge_PublishAfterCloseIsDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := events.NewMockPublisher(ctrl) // no calls expected

	f := newFixture(t, Config{ProbeURL: "http://127.0.0.1:1/health"},
		staticProvider{steelReading()}, WithPublisher(pub))

	f.bridge.Close()

	// a tick that collected notes before Close must not deliver them after it
	snap := models.NewSnapshot(f.clock.Now(), 0, steelReading().Samples)
	f.bridge.publish(notes{
		changes:  []models.StatusChange{{From: models.StatusUnknown, To: models.StatusOnline}},
		snapshot: &snap,
	})
}

func TestBridge_RequestBuildFailureSetsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := events.NewMockPublisher(ctrl)

	var change models.StatusChange

	pub.EXPECT().PublishStatus(gomock.Any()).Do(func(c models.StatusChange) { change = c })

	f := newFixture(t, Config{ProbeURL: "http://bad host/health"},
		staticProvider{steelReading()}, WithPublisher(pub))

	f.bridge.Tick()

	d := f.bridge.Diagnostics()
	assert.False(t, d.InFlight)
	assert.Equal(t, models.StatusError, d.Status)
	assert.ErrorIs(t, f.bridge.LastError(), ErrTransport)
	assert.Equal(t, models.StatusError, change.To)
	assert.Equal(t, 1, f.logs.count("connectivity status changed"))

	// the failure is retried on schedule, not on every tick
	f.bridge.Tick()
	assert.Equal(t, models.StatusError, f.bridge.Status())
	assert.Equal(t, int64(1), f.bridge.Diagnostics().NextTick)
}

func TestBridge_DiagnosticsCarryReadingCounters(t *testing.T) {
	var code atomic.Int32
	code.Store(http.StatusOK)

	srv, _ := probeServer(t, &code, "")

	reading := steelReading()
	reading.Items = 4
	reading.Skipped = 2
	reading.Partial = true
	reading.BindAttempts = 3

	f := newFixture(t, Config{ProbeURL: srv.URL + "/health"}, staticProvider{reading})

	assert.Zero(t, f.bridge.Diagnostics().BindAttempts)

	f.cycle(t)

	d := f.bridge.Diagnostics()
	assert.Equal(t, 4, d.Items)
	assert.Equal(t, 2, d.Skipped)
	assert.True(t, d.Partial)
	assert.Equal(t, 3, d.BindAttempts)
}

func TestBridge_PayloadIsTruncated(t *testing.T) {
	var code atomic.Int32
	code.Store(http.StatusOK)

	srv, _ := probeServer(t, &code, "")

	f := newFixture(t, Config{ProbeURL: srv.URL + "/health", PayloadLimit: 10}, staticProvider{steelReading()})
	f.cycle(t)

	d := f.bridge.Diagnostics()
	assert.Equal(t, `{"ts":1700`, d.LastPayload)
	assert.Greater(t, d.PayloadBytes, 10)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdef", 3, "abc"},
		{"runes", "žžžž", 2, "žž"},
		{"no_limit", "abc", 0, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.limit))
		})
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{}, nil)
	require.ErrorIs(t, err, errMissingStateSource)

	_, err = New(Config{Mode: "push"}, staticProvider{})
	require.ErrorIs(t, err, errUnknownMode)

	b, err := New(Config{ProbeURL: "http://127.0.0.1:1/health"}, staticProvider{})
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, models.ModeProbe, b.cfg.Mode)
	assert.Equal(t, 2*time.Second, b.cfg.Interval)
	assert.Equal(t, 800*time.Millisecond, b.cfg.Timeout)
	assert.Equal(t, 8000, b.cfg.PayloadLimit)
	assert.Equal(t, models.StatusUnknown, b.Status())
}

func TestRunner_TicksUntilCanceled(t *testing.T) {
	var code atomic.Int32
	code.Store(http.StatusOK)

	srv, hits := probeServer(t, &code, "")

	b, err := New(Config{ProbeURL: srv.URL + "/health", Interval: 10 * time.Millisecond},
		staticProvider{steelReading()}, WithLogger(slog.New(&recordHandler{})))
	require.NoError(t, err)

	var frames atomic.Int32

	r := &Runner{Bridge: b, Every: time.Millisecond, OnFrame: func() { frames.Add(1) }}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool { return b.Status() == models.StatusOnline }, 3*time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, r.Stop(context.Background()))

	assert.Positive(t, frames.Load())
	assert.Positive(t, hits.Load())
}
