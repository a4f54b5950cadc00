package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lomoval/personal-calendar/internal/storagebuilder"
	"github.com/stretchr/testify/require"
)

const testConfig = `
httpServer:
  host: 0.0.0.0
  port: 8080
  mode: development
logger:
  level: DEBUG
storage:
  storageType: postgres
  database:
    host: db
    port: 5432
    database: calendar
    username: calendar
    password: $env:CALENDAR_TEST_PG_PASSWORD
rabbit:
  enabled: true
  host: mq
  port: 5672
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewConfig(t *testing.T) {
	dir := t.TempDir()
	configFile := writeFile(t, dir, "config.yaml", testConfig)
	envFile := writeFile(t, dir, ".env", "CALENDAR_TEST_PG_PASSWORD=secret\n")
	t.Setenv("PORT", "")
	t.Cleanup(func() { os.Unsetenv("CALENDAR_TEST_PG_PASSWORD") })

	config, err := NewConfig(configFile, envFile)
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", config.HTTPServer.Host)
	require.Equal(t, 8080, config.HTTPServer.Port)
	require.Equal(t, "development", config.HTTPServer.Mode)
	require.False(t, config.GrpcServer.Enabled)
	require.Equal(t, 3002, config.GrpcServer.Port)
	require.Equal(t, "DEBUG", config.Logger.Level)
	require.Equal(t, "text", config.Logger.Format)
	require.Equal(t, storagebuilder.TypePostgres, config.Storage.StorageType)
	require.Equal(t, "db", config.Storage.Database.Host)
	require.Equal(t, "secret", config.Storage.Database.Password)
	require.True(t, config.Rabbit.Enabled)
	require.Equal(t, "mq", config.Rabbit.Host)
	require.Equal(t, "calendar.events", config.Rabbit.Queue)
}

func TestNewConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	configFile := writeFile(t, dir, "config.yaml", "logger:\n  format: json\n")
	t.Setenv("PORT", "4000")

	config, err := NewConfig(configFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	require.Equal(t, 4000, config.HTTPServer.Port)
	require.Equal(t, "production", config.HTTPServer.Mode)
	require.Equal(t, storagebuilder.TypeSQLite, config.Storage.StorageType)
	require.Equal(t, "./calendar.db", config.Storage.SQLite.Path)
	require.Equal(t, "json", config.Logger.Format)
}

func TestNewConfigIncorrect(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PORT", "")

	_, err := NewConfig(filepath.Join(dir, "absent.yaml"), filepath.Join(dir, ".env"))
	require.ErrorContains(t, err, "failed to read config")

	configFile := writeFile(t, dir, "config.yaml", "logger:\n  level: INFO\n")
	t.Setenv("PORT", "http")
	_, err = NewConfig(configFile, filepath.Join(dir, ".env"))
	require.ErrorContains(t, err, "incorrect PORT")
}
