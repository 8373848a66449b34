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


// Package sink is a minimal consumer for the bridge: it answers probes and
// keeps the latest reported snapshot.
package sink

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/carverauto/statsbridge/pkg/config"
	httpx "github.com/carverauto/statsbridge/pkg/http"
	"github.com/carverauto/statsbridge/pkg/logger"
	"github.com/carverauto/statsbridge/pkg/wire"
)

const readHeaderTimeout = 5 * time.Second

// Health is the body of GET /health.
type Health struct {
	Status   string    `json:"status"`
	Received uint64    `json:"received"`
	LastAt   time.Time `json:"last_at,omitempty"`
}

// Server accepts snapshots on the ingest path and serves the latest one.
// It speaks HTTP/1.1 and cleartext HTTP/2 on the same port.
type Server struct {
	cfg    config.SinkConfig
	log    *slog.Logger
	router *mux.Router
	now    func() time.Time

	mu       sync.RWMutex
	latest   wire.Payload
	received uint64
	lastAt   time.Time
	srv      *http.Server
}

func NewServer(cfg config.SinkConfig, log *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.With("sink")
	}

	s := &Server{
		cfg:    cfg,
		log:    log,
		router: mux.NewRouter(),
		now:    time.Now,
		latest: wire.Payload{Resources: map[string]float64{}},
	}

	s.router.Use(httpx.LoggingMiddleware(log))
	s.router.HandleFunc("/health", s.health).Methods("GET")
	s.router.HandleFunc("/v1/resources", s.resources).Methods("GET")
	s.router.HandleFunc("/ingest", s.ingest).Methods("POST")

	return s, nil
}

// Handler serves both HTTP/1.1 and prior-knowledge h2c.
func (s *Server) Handler() http.Handler {
	return h2c.NewHandler(httpx.CommonMiddleware(s.router), &http2.Server{})
}

// Latest returns the most recently accepted payload.
func (s *Server) Latest() wire.Payload {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latest
}

func (s *Server) Start(context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	s.log.Info("sink listening", "addr", s.cfg.ListenAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.RLock()
	srv := s.srv
	s.mu.RUnlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	h := Health{Status: "ok", Received: s.received, LastAt: s.lastAt}
	s.mu.RUnlock()

	httpx.WriteJSON(w, s.log, http.StatusOK, h)
}

func (s *Server) resources(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, s.log, http.StatusOK, s.Latest())
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}

		http.Error(w, "error reading body", http.StatusBadRequest)

		return
	}

	p, err := wire.Decode(body)
	if err != nil {
		s.log.Warn("rejected payload", "error", err, "bytes", len(body))
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	s.mu.Lock()
	s.latest = p
	s.received++
	s.lastAt = s.now()
	s.mu.Unlock()

	s.log.Debug("snapshot received", "tick", p.Tick, "resources", len(p.Resources))

	w.WriteHeader(http.StatusNoContent)
}
