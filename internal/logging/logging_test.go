package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid json",
			cfg:  Config{Level: "info", Format: "json"},
		},
		{
			name: "valid console",
			cfg:  Config{Level: "debug", Format: "console"},
		},
		{
			name:    "bad format",
			cfg:     Config{Level: "info", Format: "text"},
			wantErr: "format must be",
		},
		{
			name:    "bad level",
			cfg:     Config{Level: "verbose", Format: "json"},
			wantErr: "invalid level",
		},
		{
			name:    "empty field value",
			cfg:     Config{Level: "info", Format: "json", Fields: map[string]string{"service": ""}},
			wantErr: "empty value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "crowsnest", cfg.Fields["service"])
}

func TestNew(t *testing.T) {
	logger, err := New(NewDefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = New(&Config{Level: "nope", Format: "json"})
	assert.Error(t, err)
}

func TestTestLoggerObservation(t *testing.T) {
	tl := NewTestLogger()
	tl.Info("pipeline started")
	tl.Warn("source skipped")

	tl.AssertLogged(t, zapcore.InfoLevel, "pipeline started")
	tl.AssertLogged(t, zapcore.WarnLevel, "source skipped")
	assert.Len(t, tl.All(), 2)

	tl.Reset()
	assert.Empty(t, tl.All())
}
