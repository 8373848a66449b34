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


// Command statsbridge runs the bridge against a simulated host world and
// reports or probes the configured consumer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/carverauto/statsbridge/pkg/api"
	"github.com/carverauto/statsbridge/pkg/binder"
	"github.com/carverauto/statsbridge/pkg/bridge"
	"github.com/carverauto/statsbridge/pkg/config"
	"github.com/carverauto/statsbridge/pkg/events"
	"github.com/carverauto/statsbridge/pkg/extract"
	"github.com/carverauto/statsbridge/pkg/host"
	"github.com/carverauto/statsbridge/pkg/lifecycle"
	"github.com/carverauto/statsbridge/pkg/logger"
	"github.com/carverauto/statsbridge/pkg/sim"
	"github.com/carverauto/statsbridge/pkg/transport"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to config file (JSON or YAML)")
	seed := flag.Uint64("seed", 1, "Seed for the simulated world")
	loadAfter := flag.Duration("load-after", 3*time.Second, "Delay before the simulated save finishes loading")
	flag.Parse()

	cfg, err := config.LoadBridgeConfig(*configPath)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	logger.Init(cfg.Log.Format, level)

	world := sim.NewWorld(*seed, nil)

	registry := host.NewRegistry()
	if err := world.Register(registry); err != nil {
		return fmt.Errorf("failed to register host classes: %w", err)
	}

	b := binder.New(registry, binder.SchemaFromConfig(cfg.Target),
		binder.WithRetryInterval(cfg.BindRetry.Std()),
		binder.WithLogger(logger.With("binder")))

	reader := extract.NewReader(b, extract.WithReaderLogger(logger.With("extract")))

	hub := events.NewHub(logger.With("events"))

	client, err := transport.NewClient(cfg.Transport)
	if err != nil {
		return err
	}

	br, err := bridge.New(bridge.ConfigFrom(&cfg), reader,
		bridge.WithClient(client),
		bridge.WithPublisher(hub),
		bridge.WithLogger(logger.With("bridge")))
	if err != nil {
		return err
	}

	started := time.Now()

	runner := &bridge.Runner{
		Bridge: br,
		Every:  cfg.TickInterval.Std(),
		OnFrame: func() {
			if !world.Loaded() && time.Since(started) >= *loadAfter {
				world.Load()
				logger.Info("simulated save loaded")
			}

			world.Step()
		},
	}

	services := []lifecycle.Service{runner}

	if cfg.ListenAddr != "" {
		services = append(services, api.NewAPIServer(cfg.ListenAddr, br, hub, logger.With("api")))
	}

	return lifecycle.RunServer(context.Background(), &lifecycle.ServerOptions{
		ServiceName: "statsbridge",
		Services:    services,
		Log:         logger.With("lifecycle"),
	})
}
