package database

import (
	"testing"
	"time"

	"eventledger/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Host: "db", Port: "3306", Username: "u", Password: "p", DBName: "ledger", Charset: "utf8mb4",
	}}
	assert.Equal(t, "u:p@tcp(db:3306)/ledger?charset=utf8mb4&parseTime=True&loc=Local", DSN(cfg))
}

func TestInit_FailsAfterConnectTimeout(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Database: config.DatabaseConfig{
			// 保留端口，连接会立即被拒绝
			Host: "127.0.0.1", Port: "1", Username: "u", Password: "p", DBName: "x", Charset: "utf8mb4",
			ConnectTimeout: 300 * time.Millisecond,
		},
	}

	start := time.Now()
	err := Init(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "连接数据库失败")
	assert.Less(t, time.Since(start), 5*time.Second)
}
