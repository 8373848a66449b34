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

// Package transport builds the HTTP clients the bridge talks to its
// consumer with.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

const (
	KindHTTP1 = "http1"
	KindH2C   = "h2c" // HTTP/2 over cleartext TCP, prior knowledge

	dialTimeout     = 2 * time.Second
	idleConnTimeout = 30 * time.Second
	maxIdleConns    = 2
)

// NewClient returns a client for the given transport kind. Timeouts are left
// to the caller's request context.
func NewClient(kind string) (*http.Client, error) {
	switch kind {
	case "", KindHTTP1:
		return &http.Client{Transport: newHTTP1Transport()}, nil
	case KindH2C:
		return &http.Client{Transport: newH2CTransport()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownKind, kind)
	}
}

func newHTTP1Transport() *http.Transport {
	dialer := &net.Dialer{Timeout: dialTimeout}

	return &http.Transport{
		Proxy:               nil, // local consumer
		DialContext:         dialer.DialContext,
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConns,
		IdleConnTimeout:     idleConnTimeout,
	}
}

func newH2CTransport() *http2.Transport {
	dialer := &net.Dialer{Timeout: dialTimeout}

	return &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
		ReadIdleTimeout: idleConnTimeout,
	}
}
