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

// Package logger holds the process-wide structured logger.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

var Log *slog.Logger

func init() {
	Log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Init initializes the logger with the specified format ("text" or "json").
func Init(format string, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler

	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

// InitHost routes all records to the host's own log sink.
func InitHost(sink HostSink, level slog.Level) {
	Log = slog.New(NewHostHandler(sink, level))
	slog.SetDefault(Log)
}

// ParseLevel accepts debug, info, warn or error (case-insensitive). Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level

	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}

	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}

	return level, nil
}

// With returns a child logger tagged with the component name.
func With(component string) *slog.Logger {
	return Log.With("component", component)
}

// Convenience functions
func Info(msg string, args ...any)  { Log.Info(msg, args...) }
func Error(msg string, args ...any) { Log.Error(msg, args...) }
func Warn(msg string, args ...any)  { Log.Warn(msg, args...) }
func Debug(msg string, args ...any) { Log.Debug(msg, args...) }
