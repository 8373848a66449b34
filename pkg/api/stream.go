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


package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type streamClient struct {
	conn *websocket.Conn
	send chan StreamMessage
	done chan struct{}
	once sync.Once
}

func (c *streamClient) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// stream upgrades to a websocket and forwards hub events until the peer
// goes away. Slow peers lose messages rather than stall the publisher.
func (s *APIServer) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &streamClient{
		conn: conn,
		send: make(chan StreamMessage, streamBuffer),
		done: make(chan struct{}),
	}

	diag := s.src.Diagnostics()
	c.send <- StreamMessage{Type: MessageHello, Diagnostics: &diag}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	s.log.Debug("stream client connected", "remote", r.RemoteAddr)

	go s.writeLoop(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()

	c.close()
	s.log.Debug("stream client disconnected", "remote", r.RemoteAddr)
}

func (s *APIServer) writeLoop(c *streamClient) {
	defer c.conn.Close()

	for {
		select {
		case m := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteJSON(m); err != nil {
				s.log.Debug("stream write failed", "error", err)
				c.close()

				return
			}
		case <-c.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))

			return
		}
	}
}

func (s *APIServer) broadcast(m StreamMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for c := range s.clients {
		select {
		case c.send <- m:
		default:
			s.log.Debug("stream client lagging, message dropped", "type", m.Type)
		}
	}
}
