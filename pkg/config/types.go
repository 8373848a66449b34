package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts "800ms"-style strings or integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	return d.set(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return err
	}

	return d.set(v)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) set(v interface{}) error {
	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case int:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text or json
}

// TargetConfig overrides which host class is bound and how it is read.
// Empty fields keep the built-in products manager schema.
type TargetConfig struct {
	FullName  string   `json:"full_name,omitempty" yaml:"full_name,omitempty"`   // e.g. "Mafi.Core.Products.ProductsManager"
	Name      string   `json:"name,omitempty" yaml:"name,omitempty"`             // short-name fallback
	Namespace string   `json:"namespace,omitempty" yaml:"namespace,omitempty"`   // namespace hint for the fallback
	Items     string   `json:"items,omitempty" yaml:"items,omitempty"`           // e.g. "SlimIdManager.ManagedProtos"
	Lookup    *string  `json:"lookup,omitempty" yaml:"lookup,omitempty"`         // "" disables the per-item lookup
	Quantity  string   `json:"quantity,omitempty" yaml:"quantity,omitempty"`     // e.g. "GlobalQuantity.Value"
	ID        *string  `json:"id,omitempty" yaml:"id,omitempty"`                 // "" keys items by their string form
	IDLeaf    []string `json:"id_leaf,omitempty" yaml:"id_leaf,omitempty"`       // e.g. ["String", "Value"]
	ItemLabel string   `json:"item_label,omitempty" yaml:"item_label,omitempty"` // name used in diagnostics
}

// BridgeConfig represents the configuration for the stats bridge.
type BridgeConfig struct {
	BaseURL        string       `json:"base_url" yaml:"base_url"`               // e.g. http://127.0.0.1:3001
	Mode           string       `json:"mode" yaml:"mode"`                       // probe or report
	ProbePath      string       `json:"probe_path" yaml:"probe_path"`           // e.g. /health or /v1/resources
	IngestPath     string       `json:"ingest_path" yaml:"ingest_path"`         // e.g. /ingest
	PollInterval   Duration     `json:"poll_interval" yaml:"poll_interval"`     // time between cycles
	RequestTimeout Duration     `json:"request_timeout" yaml:"request_timeout"` // per request
	TickInterval   Duration     `json:"tick_interval" yaml:"tick_interval"`     // standalone frame rate
	BindRetry      Duration     `json:"bind_retry" yaml:"bind_retry"`           // min time between bind attempts
	PayloadLimit   int          `json:"payload_limit" yaml:"payload_limit"`     // chars of last payload kept
	Transport      string       `json:"transport" yaml:"transport"`             // http1 or h2c
	ListenAddr     string       `json:"listen_addr" yaml:"listen_addr"`         // diagnostics server; empty disables it
	Log            LogConfig    `json:"log" yaml:"log"`
	Target         TargetConfig `json:"target" yaml:"target"`
}

// SinkConfig represents the configuration for the reference receiver.
type SinkConfig struct {
	ListenAddr string    `json:"listen_addr" yaml:"listen_addr"` // e.g. 127.0.0.1:3001
	MaxBody    int64     `json:"max_body" yaml:"max_body"`       // bytes accepted on /ingest
	Log        LogConfig `json:"log" yaml:"log"`
}
