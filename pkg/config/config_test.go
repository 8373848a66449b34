package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadAndValidate_Defaults(t *testing.T) {
	path := writeFile(t, "bridge.json", `{}`)

	var cfg BridgeConfig
	require.NoError(t, LoadAndValidate(path, &cfg))

	assert.Equal(t, "http://127.0.0.1:3001", cfg.BaseURL)
	assert.Equal(t, ModeProbe, cfg.Mode)
	assert.Equal(t, "/health", cfg.ProbePath)
	assert.Equal(t, "/ingest", cfg.IngestPath)
	assert.Equal(t, 2*time.Second, cfg.PollInterval.Std())
	assert.Equal(t, 800*time.Millisecond, cfg.RequestTimeout.Std())
	assert.Equal(t, time.Second, cfg.BindRetry.Std())
	assert.Equal(t, 8000, cfg.PayloadLimit)
	assert.Equal(t, TransportHTTP1, cfg.Transport)
	assert.Equal(t, "http://127.0.0.1:3001/health", cfg.ProbeURL())
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeFile(t, "bridge.json", `{
		"base_url": "http://localhost:9000/",
		"mode": "report",
		"poll_interval": "5s",
		"request_timeout": 250000000,
		"target": {"full_name": "Game.Ledger", "lookup": "", "id": ""}
	}`)

	var cfg BridgeConfig
	require.NoError(t, LoadAndValidate(path, &cfg))

	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, "http://localhost:9000/ingest", cfg.IngestURL())
	assert.Equal(t, ModeReport, cfg.Mode)
	assert.Equal(t, 5*time.Second, cfg.PollInterval.Std())
	assert.Equal(t, 250*time.Millisecond, cfg.RequestTimeout.Std())
	assert.Equal(t, "Game.Ledger", cfg.Target.FullName)
	require.NotNil(t, cfg.Target.Lookup)
	assert.Empty(t, *cfg.Target.Lookup)
	require.NotNil(t, cfg.Target.ID)
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "bridge.yaml", `
base_url: http://127.0.0.1:4000
probe_path: /v1/resources
poll_interval: 1500ms
transport: h2c
log:
  level: debug
  format: json
target:
  items: Stock.Entries
  id_leaf: [Name]
`)

	var cfg BridgeConfig
	require.NoError(t, LoadAndValidate(path, &cfg))

	assert.Equal(t, "/v1/resources", cfg.ProbePath)
	assert.Equal(t, 1500*time.Millisecond, cfg.PollInterval.Std())
	assert.Equal(t, TransportH2C, cfg.Transport)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "Stock.Entries", cfg.Target.Items)
	assert.Equal(t, []string{"Name"}, cfg.Target.IDLeaf)
	assert.Nil(t, cfg.Target.Lookup)
}

func TestBridgeConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  BridgeConfig
	}{
		{name: "relative_url", cfg: BridgeConfig{BaseURL: "localhost:3001"}},
		{name: "ftp_url", cfg: BridgeConfig{BaseURL: "ftp://127.0.0.1"}},
		{name: "unknown_mode", cfg: BridgeConfig{Mode: "stream"}},
		{name: "probe_path_without_slash", cfg: BridgeConfig{ProbePath: "health"}},
		{name: "negative_interval", cfg: BridgeConfig{PollInterval: Duration(-time.Second)}},
		{name: "negative_limit", cfg: BridgeConfig{PayloadLimit: -1}},
		{name: "unknown_transport", cfg: BridgeConfig{Transport: "quic"}},
		{name: "h2c_over_https", cfg: BridgeConfig{BaseURL: "https://example.com", Transport: TransportH2C}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestDuration_Invalid(t *testing.T) {
	var d Duration

	require.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	require.ErrorIs(t, d.UnmarshalJSON([]byte(`true`)), errInvalidDuration)
}

func TestLoadFile_Errors(t *testing.T) {
	var cfg BridgeConfig

	err := LoadFile(filepath.Join(t.TempDir(), "missing.json"), &cfg)
	assert.ErrorContains(t, err, "failed to read file")

	err = LoadFile(writeFile(t, "bad.json", `{`), &cfg)
	assert.ErrorContains(t, err, "failed to unmarshal JSON")

	err = LoadFile(writeFile(t, "bad.yml", "base_url: [\n"), &cfg)
	assert.ErrorContains(t, err, "failed to unmarshal YAML")
}

func TestSinkConfig_Defaults(t *testing.T) {
	var cfg SinkConfig
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultSinkAddr, cfg.ListenAddr)
	assert.Equal(t, int64(DefaultSinkMaxBody), cfg.MaxBody)
}

func TestLoadBridgeConfig_EnvOverrides(t *testing.T) {
	path := writeFile(t, "bridge.yaml", "base_url: http://10.0.0.5:3001\nmode: probe\n")

	t.Setenv(EnvMode, "report")
	t.Setenv(EnvTransport, "h2c")

	cfg, err := LoadBridgeConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:3001", cfg.BaseURL)
	assert.Equal(t, ModeReport, cfg.Mode)
	assert.Equal(t, TransportH2C, cfg.Transport)
}

func TestLoadBridgeConfig_NoFile(t *testing.T) {
	t.Setenv(EnvBaseURL, "ftp://nope")

	_, err := LoadBridgeConfig("")
	require.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv(EnvBaseURL, "")

	cfg, err := LoadBridgeConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBridgeConfig(), cfg)
}

func TestLoadSinkConfig(t *testing.T) {
	cfg, err := LoadSinkConfig(writeFile(t, "sink.json", `{"listen_addr": ":4000"}`))
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.ListenAddr)
	assert.Equal(t, int64(DefaultSinkMaxBody), cfg.MaxBody)
}
