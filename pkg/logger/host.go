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

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
)

//go:generate mockgen -destination=mock_logger.go -package=logger github.com/carverauto/statsbridge/pkg/logger HostSink

// Prefix tags every line forwarded to the host log.
const Prefix = "[StatsBridge]"

// HostSink is the host application's log. Implementations may panic when the
// host log is not ready yet; records then go to the fallback writer.
type HostSink interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// HostHandler is a slog.Handler that flattens records into single prefixed
// lines for a HostSink.
type HostHandler struct {
	sink     HostSink
	level    slog.Leveler
	attrs    []slog.Attr
	group    string
	mu       *sync.Mutex
	fallback io.Writer
}

func NewHostHandler(sink HostSink, level slog.Leveler) *HostHandler {
	if level == nil {
		level = slog.LevelInfo
	}

	return &HostHandler{
		sink:     sink,
		level:    level,
		mu:       &sync.Mutex{},
		fallback: os.Stderr,
	}
}

// WithFallback replaces the writer used when the sink is missing or panics.
func (h *HostHandler) WithFallback(w io.Writer) *HostHandler {
	c := h.clone()
	c.fallback = w

	return c
}

func (h *HostHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *HostHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(Prefix)
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		appendAttr(&b, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.group, a)

		return true
	})

	h.emit(r.Level, b.String())

	return nil
}

func (h *HostHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()

	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}

		c.attrs = append(c.attrs, a)
	}

	return c
}

func (h *HostHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := h.clone()
	if c.group != "" {
		c.group += "."
	}

	c.group += name

	return c
}

func (h *HostHandler) clone() *HostHandler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)

	return &c
}

func (h *HostHandler) emit(level slog.Level, line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sink == nil {
		h.writeFallback(line)

		return
	}

	defer func() {
		if r := recover(); r != nil {
			h.writeFallback(fmt.Sprintf("%s (host log unavailable: %v)", line, r))
		}
	}()

	switch {
	case level >= slog.LevelError:
		h.sink.Error(line)
	case level >= slog.LevelWarn:
		h.sink.Warn(line)
	default:
		h.sink.Info(line)
	}
}

func (h *HostHandler) writeFallback(line string) {
	if h.fallback == nil {
		return
	}

	_, _ = io.WriteString(h.fallback, line+"\n")
}

func appendAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if group != "" {
		key = group + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, sub := range a.Value.Group() {
			appendAttr(b, key, sub)
		}

		return
	}

	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')

	v := a.Value.String()
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		v = strconv.Quote(v)
	}

	b.WriteString(v)
}
