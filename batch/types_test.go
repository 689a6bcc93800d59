package batch

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBConfigDSN(t *testing.T) {
	dsn := DBConfig{
		User:     "app",
		Password: "secret",
		Database: "freqset",
		Params:   map[string]string{"timeout": "5s"},
	}.dsn()

	mc, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "app", mc.User)
	assert.Equal(t, "secret", mc.Passwd)
	assert.Equal(t, "tcp", mc.Net)
	assert.Equal(t, "127.0.0.1:3306", mc.Addr)
	assert.Equal(t, "freqset", mc.DBName)
	assert.True(t, mc.ParseTime)
	assert.Equal(t, "utf8mb4", mc.Params["charset"])
	assert.Equal(t, "5s", mc.Params["timeout"])
}

func TestDBConfigDSNHostPort(t *testing.T) {
	mc, err := mysql.ParseDSN(DBConfig{Host: "db", Port: 3307, User: "u", Database: "d"}.dsn())
	require.NoError(t, err)
	assert.Equal(t, "db:3307", mc.Addr)
}

func TestAprioriConfigDefaults(t *testing.T) {
	cfg := AprioriConfig{Inputs: []string{"in"}, OutputRoot: "out"}
	cfg.withDefaults()
	assert.Equal(t, 0, cfg.MinSupport)
	assert.Error(t, cfg.validate())
	assert.Equal(t, 3, cfg.Shards)
	assert.Equal(t, 4, cfg.Workers)
	assert.NotNil(t, cfg.Runner)
	assert.True(t, cfg.Sinks.empty())
}
