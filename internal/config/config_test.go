package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
server:
  hostname: "127.0.0.1"
  port: 9090

database:
  type: "mysql"
  hostname: "db.internal"
  port: 3306
  user: "approval"
  password: "secret"
  database: "approval_db"

logging:
  level: "debug"

security:
  basic_auth:
    enabled: true
    users:
      - username: "admin"
        password: "secret"
`

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.GetServerAddress())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 20, cfg.Approval.DefaultPageSize)
	assert.Equal(t, 100, cfg.Approval.MaxPageSize)
	assert.NotEmpty(t, cfg.Approval.WaitingMessage)
	assert.True(t, cfg.Security.IsBasicAuthEnabled())
	assert.True(t, cfg.Security.ValidateUser("admin", "secret"))
	assert.False(t, cfg.Security.ValidateUser("admin", "wrong"))
}

func TestLoad_BasicAuthWithoutUsersRejected(t *testing.T) {
	content := `
server:
  hostname: "127.0.0.1"
  port: 9090

database:
  hostname: "db.internal"
  port: 3306
  user: "approval"
  password: "secret"
  database: "approval_db"

security:
  basic_auth:
    enabled: true
`
	_, err := Load(writeConfigFile(t, content))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	cfg := &DatabaseConfig{
		User:     "approval",
		Password: "secret",
		Hostname: "db.internal",
		Port:     3306,
		Database: "approval_db",
	}
	assert.Equal(t,
		"approval:secret@tcp(db.internal:3306)/approval_db?parseTime=true&multiStatements=true",
		cfg.GetDSN())
}
