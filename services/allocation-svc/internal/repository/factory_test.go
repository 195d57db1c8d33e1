package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netalloc/pkg/config"
)

func TestNewHistory(t *testing.T) {
	tests := []struct {
		name     string
		history  bool
		database bool
		want     Backend
	}{
		// база недоступна: выключенная история не должна к ней обращаться
		{"history disabled with database", false, true, BackendNone},
		{"history disabled", false, false, BackendNone},
		{"memory", true, false, BackendMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				History: config.HistoryConfig{Enabled: tt.history, MaxItems: 10},
				Database: config.DatabaseConfig{
					Enabled: tt.database,
					Host:    "127.0.0.1",
					Port:    1,
				},
			}

			h, err := NewHistory(context.Background(), cfg)
			require.NoError(t, err)
			defer h.Close()

			assert.Equal(t, tt.want, h.Backend)
			if tt.want == BackendNone {
				assert.Nil(t, h.Runs)
			} else {
				assert.IsType(t, &MemoryRunRepository{}, h.Runs)
			}
		})
	}
}

func TestNewHistory_DatabaseUnavailable(t *testing.T) {
	cfg := &config.Config{
		History: config.HistoryConfig{Enabled: true},
		Database: config.DatabaseConfig{
			Enabled:  true,
			Host:     "127.0.0.1",
			Port:     1,
			Database: "netalloc",
			Username: "netalloc",
			Password: "netalloc",
			SSLMode:  "disable",
		},
	}

	_, err := NewHistory(context.Background(), cfg)
	assert.Error(t, err)
}
