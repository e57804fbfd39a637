package logger_test

import (
	"context"
	"testing"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rise-and-shine/filemanager/meta"
	"github.com/rise-and-shine/filemanager/observability/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     logger.Config
		wantErr bool
	}{
		{name: "json", cfg: logger.Config{Level: "info", Encoding: "json"}},
		{name: "pretty", cfg: logger.Config{Level: "debug", Encoding: "pretty"}},
		{name: "disabled ignores level", cfg: logger.Config{Level: "nope", Disable: true}},
		{name: "bad level", cfg: logger.Config{Level: "loud", Encoding: "json"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, err := logger.New(tc.cfg)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestWithContextAddsMeta(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	ctx := context.WithValue(t.Context(), meta.TraceID, "trace-1")
	log.WithContext(ctx).Named("registry").Info("listed")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "registry", entry.LoggerName)
	assert.Equal(t, "trace-1", entry.ContextMap()["trace_id"])
}

func TestErrorxExpandsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	log.Errorx(errx.New("boom", errx.WithCode("STORE_ERROR")))
	log.Warnx(assert.AnError)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "STORE_ERROR", logs.All()[0].ContextMap()["error_code"])
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
	assert.Equal(t, assert.AnError.Error(), logs.All()[1].Message)
}
