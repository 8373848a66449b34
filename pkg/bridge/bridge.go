/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package bridge runs the poll/report state machine that carries snapshots
// of host state to a local consumer and tracks connectivity to it.
package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/carverauto/statsbridge/pkg/config"
	"github.com/carverauto/statsbridge/pkg/events"
	"github.com/carverauto/statsbridge/pkg/logger"
	"github.com/carverauto/statsbridge/pkg/models"
	"github.com/carverauto/statsbridge/pkg/transport"
	"github.com/carverauto/statsbridge/pkg/wire"
	"github.com/tidwall/gjson"
)

//go:generate mockgen -destination=mock_bridge.go -package=bridge github.com/carverauto/statsbridge/pkg/bridge StateProvider

// StateProvider supplies the current reading of host state. Read must not
// block and must not panic; the bridge recovers if it does anyway.
type StateProvider interface {
	Read() models.Reading
}

const maxResponseBody = 1 << 20

// Config is the runtime configuration of a Bridge.
type Config struct {
	Mode         models.Mode
	ProbeURL     string
	IngestURL    string
	Interval     time.Duration
	Timeout      time.Duration
	PayloadLimit int
}

// ConfigFrom converts a validated BridgeConfig.
func ConfigFrom(c *config.BridgeConfig) Config {
	return Config{
		Mode:         models.Mode(c.Mode),
		ProbeURL:     c.ProbeURL(),
		IngestURL:    c.IngestURL(),
		Interval:     c.PollInterval.Std(),
		Timeout:      c.RequestTimeout.Std(),
		PayloadLimit: c.PayloadLimit,
	}
}

func (c Config) endpoint() string {
	if c.Mode == models.ModeReport {
		return c.IngestURL
	}

	return c.ProbeURL
}

// outcome is the result of one network call, handed back to the tick.
type outcome struct {
	gen    uint64
	status int
	reason string
	body   []byte
	err    error
}

// notes collects what a tick must publish once the lock is released.
type notes struct {
	changes  []models.StatusChange
	snapshot *models.Snapshot
}

// Bridge is the poll/report state machine. Tick drives it; every other
// method is safe to call from any goroutine.
type Bridge struct {
	mu sync.Mutex
	// pubMu orders delivery against Close; taken before mu, never while holding it.
	pubMu sync.Mutex

	cfg      Config
	provider StateProvider
	pub      events.Publisher
	client   *http.Client
	log      *slog.Logger
	now      func() time.Time

	status       statusTracker
	lastErr      error
	lastPayload  string
	payloadBytes int
	providerName string
	method       string
	items        int
	skipped      int
	partial      bool
	bindAttempts int
	remote       int
	lastReportAt time.Time
	nextAt       time.Time
	tick         int64

	inFlight bool
	pending  models.Snapshot
	done     chan outcome
	cancel   context.CancelFunc
	gen      uint64
	closed   bool
}

type Option func(*Bridge)

// WithClient overrides the HTTP client built from the transport kind.
func WithClient(c *http.Client) Option {
	return func(b *Bridge) { b.client = c }
}

func WithClock(now func() time.Time) Option {
	return func(b *Bridge) { b.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// WithPublisher sets where snapshots and status changes are announced.
func WithPublisher(p events.Publisher) Option {
	return func(b *Bridge) { b.pub = p }
}

// New returns a bridge in the Unknown state whose first cycle starts on the
// first Tick.
func New(cfg Config, provider StateProvider, opts ...Option) (*Bridge, error) {
	if provider == nil {
		return nil, errMissingStateSource
	}

	if cfg.Mode == "" {
		cfg.Mode = models.ModeProbe
	}

	if cfg.Mode != models.ModeProbe && cfg.Mode != models.ModeReport {
		return nil, fmt.Errorf("%w: %q", errUnknownMode, cfg.Mode)
	}

	if cfg.Interval <= 0 {
		cfg.Interval = config.DefaultPollInterval
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultRequestTimeout
	}

	if cfg.PayloadLimit <= 0 {
		cfg.PayloadLimit = config.DefaultPayloadLimit
	}

	b := &Bridge{
		cfg:      cfg,
		provider: provider,
		now:      time.Now,
		done:     make(chan outcome, 1),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.log == nil {
		b.log = logger.With("bridge")
	}

	if b.client == nil {
		c, err := transport.NewClient(transport.KindHTTP1)
		if err != nil {
			return nil, err
		}

		b.client = c
	}

	b.status = statusTracker{current: models.StatusUnknown, log: b.log}
	b.nextAt = b.now()

	return b, nil
}

// Tick advances the state machine by one step. It never blocks on I/O: a
// finished call is collected if one is waiting, and a new one is started
// only when none is outstanding and the schedule allows it.
func (b *Bridge) Tick() {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return
	}

	var n notes

	select {
	case o := <-b.done:
		b.complete(o, &n)
	default:
	}

	if !b.inFlight && !b.now().Before(b.nextAt) {
		b.begin(&n)
	}

	b.mu.Unlock()

	b.publish(n)
}

// ForceProbe moves the next cycle to now. An outstanding call is not
// interrupted; the forced cycle starts on the first tick after it finishes.
func (b *Bridge) ForceProbe() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextAt = b.now()
	b.log.Debug("probe forced")
}

// Close stops scheduling, abandons the outstanding call and releases idle
// connections. A call that finishes after Close never touches state, and
// nothing is published once Close returns. Close must not be called from a
// publisher callback.
func (b *Bridge) Close() {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	b.gen++
	b.inFlight = false

	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}

	b.client.CloseIdleConnections()
	b.log.Debug("bridge closed")
}

func (b *Bridge) Status() models.Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.status.current
}

// LastError returns the most recent fault, or nil after a successful cycle.
func (b *Bridge) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.lastErr
}

// Diagnostics returns a copy of the bridge's observable state.
func (b *Bridge) Diagnostics() models.Diagnostics {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := models.Diagnostics{
		Status:          b.status.current,
		LastPayload:     b.lastPayload,
		PayloadBytes:    b.payloadBytes,
		Provider:        b.providerName,
		Method:          b.method,
		Items:           b.items,
		Skipped:         b.skipped,
		Partial:         b.partial,
		BindAttempts:    b.bindAttempts,
		RemoteResources: b.remote,
		LastReportAt:    b.lastReportAt,
		NextTick:        b.tick,
		Mode:            b.cfg.Mode,
		InFlight:        b.inFlight,
		Endpoint:        b.cfg.endpoint(),
	}

	if b.lastErr != nil {
		d.LastError = b.lastErr.Error()
	}

	return d
}

// begin reads host state, encodes it and starts the network call.
// Called with mu held.
func (b *Bridge) begin(n *notes) {
	now := b.now()

	reading := b.read()
	b.providerName = reading.Provider
	b.method = reading.Method
	b.items = reading.Items
	b.skipped = reading.Skipped
	b.partial = reading.Partial
	b.bindAttempts = reading.BindAttempts

	snap := models.NewSnapshot(now, b.tick, reading.Samples)

	payload, err := wire.EncodeSnapshot(snap)
	if err != nil {
		// the cycle is lost but the status stands
		b.lastErr = fmt.Errorf("%w: %w", ErrSerialization, err)
		b.nextAt = now.Add(b.cfg.Interval)
		b.log.Warn("skipping cycle", "tick", snap.Tick, "error", err)

		return
	}

	b.tick++
	b.pending = snap
	b.lastPayload = truncate(string(payload), b.cfg.PayloadLimit)
	b.payloadBytes = len(payload)

	req, cancel, err := b.newRequest(payload)
	if err != nil {
		b.nextAt = now.Add(b.cfg.Interval)
		b.fail(fmt.Errorf("%w: %w", ErrTransport, err), n)

		return
	}

	b.inFlight = true
	b.cancel = cancel

	go b.do(req, cancel, b.gen)
}

func (b *Bridge) read() (r models.Reading) {
	defer func() {
		if v := recover(); v != nil {
			b.log.Error("state provider panicked", "panic", v)
			r = models.Reading{Provider: "unavailable", Method: fmt.Sprintf("%v: %v", errProviderPanic, v)}
		}
	}()

	return b.provider.Read()
}

func (b *Bridge) newRequest(payload []byte) (*http.Request, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.Timeout)

	var (
		req *http.Request
		err error
	)

	if b.cfg.Mode == models.ModeReport {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.IngestURL, bytes.NewReader(payload))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.ProbeURL, http.NoBody)
	}

	if err != nil {
		cancel()
		return nil, nil, err
	}

	req.Header.Set("Accept", "application/json")

	return req, cancel, nil
}

// do runs on its own goroutine. The single-slot channel always has room
// because only one call is ever outstanding per generation; a stale send
// after Close is dropped.
func (b *Bridge) do(req *http.Request, cancel context.CancelFunc, gen uint64) {
	defer cancel()

	o := outcome{gen: gen}

	resp, err := b.client.Do(req)
	if err != nil {
		o.err = err
	} else {
		o.status = resp.StatusCode
		o.reason = http.StatusText(resp.StatusCode)
		o.body, o.err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))

		_ = resp.Body.Close()
	}

	select {
	case b.done <- o:
	default:
	}
}

// complete applies a finished call to state. Called with mu held.
func (b *Bridge) complete(o outcome, n *notes) {
	if o.gen != b.gen {
		return
	}

	now := b.now()

	b.inFlight = false
	b.cancel = nil
	b.nextAt = now.Add(b.cfg.Interval)

	if o.err != nil {
		b.fail(classify(o.err, b.cfg.Timeout), n)
		return
	}

	if o.status < 200 || o.status > 299 {
		b.fail(fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, o.status, o.reason), n)
		return
	}

	remote, err := countResources(o.body, b.cfg.Mode == models.ModeProbe)
	if err != nil {
		b.fail(err, n)
		return
	}

	b.remote = remote
	b.lastErr = nil
	b.lastReportAt = now

	if c, ok := b.status.set(models.StatusOnline, "", now); ok {
		n.changes = append(n.changes, c)
	}

	snap := b.pending
	n.snapshot = &snap
}

func (b *Bridge) fail(err error, n *notes) {
	b.lastErr = err

	to := models.StatusError
	if errors.Is(err, syscall.ECONNREFUSED) {
		to = models.StatusOffline
	}

	if c, ok := b.status.set(to, err.Error(), b.now()); ok {
		n.changes = append(n.changes, c)
	}

	b.log.Debug("cycle failed", "error", err)
}

// publish delivers what a tick collected, unless the bridge was closed
// after the tick released mu.
func (b *Bridge) publish(n notes) {
	if b.pub == nil || (len(n.changes) == 0 && n.snapshot == nil) {
		return
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()

	if closed {
		return
	}

	for _, c := range n.changes {
		b.pub.PublishStatus(c)
	}

	if n.snapshot != nil {
		b.pub.PublishSnapshot(*n.snapshot)
	}
}

func classify(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}

	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}

	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// countResources validates a 2xx body and returns the key count of its
// top-level resources object. Report acknowledgements are not required to
// carry a body.
func countResources(body []byte, strict bool) (int, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return 0, nil
	}

	if !gjson.ValidBytes(body) {
		if strict {
			return 0, fmt.Errorf("%w: body is not JSON", ErrInvalidResponse)
		}

		return 0, nil
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		if strict {
			return 0, fmt.Errorf("%w: body is not an object", ErrInvalidResponse)
		}

		return 0, nil
	}

	resources := root.Get("resources")
	if !resources.IsObject() {
		return 0, nil
	}

	count := 0

	resources.ForEach(func(_, _ gjson.Result) bool {
		count++
		return true
	})

	return count, nil
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}

	i := 0

	for pos := range s {
		if i == limit {
			return s[:pos]
		}

		i++
	}

	return s
}
