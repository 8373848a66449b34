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


// Command statsbridge-sink is a reference consumer for statsbridge.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/carverauto/statsbridge/pkg/config"
	"github.com/carverauto/statsbridge/pkg/lifecycle"
	"github.com/carverauto/statsbridge/pkg/logger"
	"github.com/carverauto/statsbridge/pkg/sink"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON or YAML)")
	listenAddr := flag.String("listen", "", "Listen address, overrides the config file")
	flag.Parse()

	cfg, err := config.LoadSinkConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}

	logger.Init(cfg.Log.Format, level)

	server, err := sink.NewServer(cfg, logger.With("sink"))
	if err != nil {
		log.Fatalf("Failed to create sink: %v", err)
	}

	if err := lifecycle.RunServer(context.Background(), &lifecycle.ServerOptions{
		ServiceName: "statsbridge-sink",
		Services:    []lifecycle.Service{server},
		Log:         logger.With("lifecycle"),
	}); err != nil {
		log.Fatalf("Sink failed: %v", err)
	}
}
