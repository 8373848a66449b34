package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHostHandler_RoutesByLevel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := NewMockHostSink(ctrl)

	sink.EXPECT().Info("[StatsBridge] binder ready items=3")
	sink.EXPECT().Warn(`[StatsBridge] slow probe component=bridge took="1.2 s"`)
	sink.EXPECT().Error("[StatsBridge] probe failed component=bridge req.status=503")

	log := slog.New(NewHostHandler(sink, slog.LevelInfo))
	log.Debug("dropped")
	log.Info("binder ready", "items", 3)

	child := log.With("component", "bridge")
	child.Warn("slow probe", "took", "1.2 s")
	child.WithGroup("req").Error("probe failed", "status", 503)
}

func TestHostHandler_FallsBackWhenSinkPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := NewMockHostSink(ctrl)
	sink.EXPECT().Info(gomock.Any()).Do(func(string) { panic("log not ready") })

	var buf bytes.Buffer

	log := slog.New(NewHostHandler(sink, slog.LevelInfo).WithFallback(&buf))

	require.NotPanics(t, func() { log.Info("hello") })
	assert.Contains(t, buf.String(), "[StatsBridge] hello")
	assert.Contains(t, buf.String(), "log not ready")
}

func TestHostHandler_NilSink(t *testing.T) {
	var buf bytes.Buffer

	log := slog.New(NewHostHandler(nil, slog.LevelDebug).WithFallback(&buf))
	log.Debug("no host", "k", "v")

	assert.Equal(t, "[StatsBridge] no host k=v\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err)

			continue
		}

		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
