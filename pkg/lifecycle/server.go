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

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/statsbridge/pkg/logger"
)

const ShutdownTimeout = 10 * time.Second

// Service defines the interface that all services must implement.
// Start may block until its context is canceled.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// ServerOptions holds configuration for running a set of services.
type ServerOptions struct {
	ServiceName string
	Services    []Service
	Log         *slog.Logger
	// Signals defaults to SIGINT and SIGTERM.
	Signals []os.Signal
}

// RunServer starts every service and blocks until a signal arrives, a
// service fails or ctx is canceled. Services are stopped in reverse order.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := opts.Log
	if log == nil {
		log = logger.With("lifecycle")
	}

	log.Info("starting service", "service", opts.ServiceName, "components", len(opts.Services))

	errChan := make(chan error, len(opts.Services))

	for _, svc := range opts.Services {
		go func() {
			if err := svc.Start(ctx); err != nil {
				select {
				case errChan <- err:
				default:
					log.Error("service error", "error", err)
				}
			}
		}()
	}

	return handleShutdown(ctx, cancel, opts, log, errChan)
}

func handleShutdown(
	ctx context.Context, cancel context.CancelFunc, opts *ServerOptions, log *slog.Logger, errChan chan error) error {
	signals := opts.Signals
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, signals...)

	defer signal.Stop(sigChan)

	var runErr error

	select {
	case sig := <-sigChan:
		log.Info("received signal, initiating shutdown", "signal", sig.String())
	case err := <-errChan:
		log.Error("service failed, initiating shutdown", "error", err)
		runErr = fmt.Errorf("service error: %w", err)
	case <-ctx.Done():
		log.Info("context canceled, initiating shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	var stopErrs []error

	for i := len(opts.Services) - 1; i >= 0; i-- {
		if err := opts.Services[i].Stop(shutdownCtx); err != nil {
			log.Error("error during service shutdown", "error", err)
			stopErrs = append(stopErrs, err)
		}
	}

	if len(stopErrs) > 0 {
		return errors.Join(runErr, fmt.Errorf("shutdown error: %w", errors.Join(stopErrs...)))
	}

	return runErr
}
