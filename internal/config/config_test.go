package config

import (
	"bytes"
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8000", cfg.Addr)
	assert.Equal(t, 1000, cfg.HistoryCapacity)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 64, cfg.WorkerBacklog)
	assert.Equal(t, "meowww.db", cfg.DBPath)
	assert.Equal(t, []string{"*"}, cfg.CORSAllow)
	assert.Equal(t, 30*time.Second, cfg.PingInterval)
	assert.Equal(t, 10*time.Second, cfg.ResolveTimeout)
	assert.Equal(t, 10*time.Second, cfg.WriteWait)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("HISTORY_CAPACITY", "25")
	t.Setenv("WORKERS", "8")
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("CORS_ALLOW", "http://a.example, http://b.example")
	t.Setenv("PING_INTERVAL", "5s")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 25, cfg.HistoryCapacity)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllow)
	assert.Equal(t, 5*time.Second, cfg.PingInterval)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("HISTORY_CAPACITY", "25")

	cfg, err := Load([]string{"-history", "3", "-workers", "4", "-db", "", "-resolve-timeout", "0", "0.0.0.0:7000"})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", cfg.Addr)
	assert.Equal(t, 3, cfg.HistoryCapacity)
	assert.Equal(t, 4, cfg.Workers)
	assert.Empty(t, cfg.DBPath)
	assert.Zero(t, cfg.ResolveTimeout)
}

func TestLoadInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("HISTORY_CAPACITY", "notanumber")
	t.Setenv("PING_INTERVAL", "soon")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.HistoryCapacity)
	assert.Equal(t, 30*time.Second, cfg.PingInterval)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative history", []string{"-history", "-1"}},
		{"zero workers", []string{"-workers", "0"}},
		{"negative ping", []string{"-ping", "-1s"}},
		{"extra args", []string{"a:1", "b:2"}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := Load([]string{"-h"})
	assert.ErrorIs(t, err, flag.ErrHelp)

	var buf bytes.Buffer
	Usage(&buf)
	assert.Contains(t, buf.String(), "usage: meowww")
	assert.Contains(t, buf.String(), "-history")
}
