package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sameicp/assignment-monitor/internal/config"
)

const baseConfig = `
server:
  host: 127.0.0.1
  port: 8090
  write-timeout: 60s
  read-timeout: 60s
  idle-timeout: 60s
  allowed-origins: ["*"]
  log-level: debug
  max-content-length: 4096
  health-check-interval: 300
db:
  driver: sqlite
  sqlite-path: ./escrow.db
escrow:
  min-stake-amount: 1000
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewAppliesDefaults(t *testing.T) {
	cfg, err := config.New(writeConfig(t, baseConfig))
	require.NoError(t, err)

	assert.Equal(t, uint64(1000), cfg.Escrow.MinStakeAmount)
	assert.Equal(t, int64(86400), cfg.Escrow.SecondsPerDay)
	assert.Equal(t, 2112, cfg.Metrics.GetMetricsPort())
	assert.False(t, cfg.Queue.Enabled)
	assert.True(t, cfg.Db.IsSQLite())
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
}

func TestNewReadsEnvOverrides(t *testing.T) {
	t.Setenv("ESCROW_MIN__STAKE__AMOUNT", "2500")

	cfg, err := config.New(writeConfig(t, baseConfig))
	require.NoError(t, err)
	assert.Equal(t, uint64(2500), cfg.Escrow.MinStakeAmount)
}

func TestNewMissingFile(t *testing.T) {
	_, err := config.New(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestEnabledQueueRequiresCredentials(t *testing.T) {
	_, err := config.New(writeConfig(t, baseConfig+`
queue:
  enabled: true
  url: localhost:5672
`))
	assert.ErrorContains(t, err, "missing queue user")
}

func TestDbConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.DbConfig
		wantErr bool
	}{
		{"mongo", config.DbConfig{DbName: "escrow", Address: "mongodb://localhost:27017"}, false},
		{"mongo without port", config.DbConfig{DbName: "escrow", Address: "mongodb://localhost"}, true},
		{"mongo wrong scheme", config.DbConfig{DbName: "escrow", Address: "http://localhost:27017"}, true},
		{"sqlite", config.DbConfig{Driver: config.SQLiteDriver, SqlitePath: "escrow.db"}, false},
		{"sqlite without path", config.DbConfig{Driver: config.SQLiteDriver}, true},
		{"unknown driver", config.DbConfig{Driver: "postgres"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEscrowDueDateDelay(t *testing.T) {
	cfg := config.EscrowConfig{MinStakeAmount: 1000, SecondsPerDay: 2}
	assert.Equal(t, 6*time.Second, cfg.DueDateDelay(3))

	cfg.SecondsPerDay = 0
	assert.Error(t, cfg.Validate())
}
