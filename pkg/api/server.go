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

// Package api serves the bridge's read-only diagnostics over HTTP and
// streams published events over a websocket.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/carverauto/statsbridge/pkg/events"
	httpx "github.com/carverauto/statsbridge/pkg/http"
	"github.com/carverauto/statsbridge/pkg/logger"
	"github.com/carverauto/statsbridge/pkg/models"
)

const (
	writeWait       = 2 * time.Second
	readHeaderLimit = 5 * time.Second
	streamBuffer    = 16
)

type APIServer struct {
	addr     string
	src      Source
	log      *slog.Logger
	router   *mux.Router
	upgrader websocket.Upgrader
	subs     events.Group

	mu      sync.RWMutex
	latest  *models.Snapshot
	clients map[*streamClient]struct{}
	srv     *http.Server
}

// NewAPIServer builds the router and subscribes to hub. Stop releases the
// subscriptions.
func NewAPIServer(addr string, src Source, hub *events.Hub, log *slog.Logger) *APIServer {
	if log == nil {
		log = logger.With("api")
	}

	s := &APIServer{
		addr:    addr,
		src:     src,
		log:     log,
		router:  mux.NewRouter(),
		clients: make(map[*streamClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	s.setupRoutes()

	if hub != nil {
		s.subs = events.Group{
			hub.OnSnapshot(s.onSnapshot),
			hub.OnStatus(s.onStatus),
		}
	}

	return s
}

func (s *APIServer) setupRoutes() {
	s.router.Use(httpx.LoggingMiddleware(s.log))

	s.router.HandleFunc("/api/status", s.getStatus).Methods("GET")
	s.router.HandleFunc("/api/resources", s.getResources).Methods("GET")
	s.router.HandleFunc("/api/probe", s.forceProbe).Methods("POST")
	s.router.HandleFunc("/api/stream", s.stream).Methods("GET")
}

// Handler wraps the router so CORS preflights are answered before routing.
func (s *APIServer) Handler() http.Handler { return httpx.CommonMiddleware(s.router) }

// Start serves until Stop is called.
func (s *APIServer) Start(context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderLimit,
	}

	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	s.log.Info("diagnostics server listening", "addr", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop shuts the listener down and disconnects stream clients.
func (s *APIServer) Stop(ctx context.Context) error {
	s.subs.Close()

	s.mu.Lock()
	srv := s.srv
	clients := s.clients
	s.clients = make(map[*streamClient]struct{})
	s.mu.Unlock()

	for c := range clients {
		c.close()
	}

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}

func (s *APIServer) getStatus(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, s.log, http.StatusOK, s.src.Diagnostics())
}

func (s *APIServer) getResources(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest == nil {
		http.Error(w, "no snapshot published yet", http.StatusNotFound)
		return
	}

	httpx.WriteJSON(w, s.log, http.StatusOK, latest)
}

func (s *APIServer) forceProbe(w http.ResponseWriter, _ *http.Request) {
	s.src.ForceProbe()

	w.WriteHeader(http.StatusAccepted)
}

func (s *APIServer) onSnapshot(snap models.Snapshot) {
	s.mu.Lock()
	s.latest = &snap
	s.mu.Unlock()

	s.broadcast(StreamMessage{Type: MessageSnapshot, Snapshot: &snap})
}

func (s *APIServer) onStatus(c models.StatusChange) {
	s.broadcast(StreamMessage{Type: MessageStatus, Status: &c})
}
