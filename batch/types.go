package batch

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/emptyOVO/freqset-go/batch/amqp_batch"
	"github.com/emptyOVO/freqset-go/batch/mysql_batch"
	"github.com/emptyOVO/freqset-go/batch/redis_batch"
	"github.com/emptyOVO/freqset-go/mrapps/apriori"
	"github.com/go-sql-driver/mysql"
)

// DBConfig defines MySQL connection parameters.
type DBConfig struct {
	Host     string            `json:"host"`
	Port     int               `json:"port"`
	User     string            `json:"user"`
	Password string            `json:"password"`
	Database string            `json:"database"`
	Params   map[string]string `json:"params"`
}

func (c DBConfig) dsn() string {
	host := c.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := c.Port
	if port == 0 {
		port = 3306
	}
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	for k, v := range c.Params {
		mc.Params[k] = v
	}
	return mc.FormatDSN()
}

func openDB(ctx context.Context, cfg DBConfig) (*sql.DB, error) {
	if cfg.User == "" {
		return nil, fmt.Errorf("db user is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("db database is required")
	}
	db, err := sql.Open("mysql", cfg.dsn())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// MySQLSinkConfig writes each phase into its own MySQL table.
type MySQLSinkConfig struct {
	DB     DBConfig               `json:"db"`
	Config mysql_batch.SinkConfig `json:"config"`
}

// RedisSinkConfig writes each phase into Redis hashes.
type RedisSinkConfig struct {
	Conn   redis_batch.ConnConfig `json:"conn"`
	Config redis_batch.SinkConfig `json:"config"`
}

// SinksConfig lists the optional result sinks. Nil entries are skipped.
type SinksConfig struct {
	MySQL *MySQLSinkConfig   `json:"mysql"`
	Redis *RedisSinkConfig   `json:"redis"`
	AMQP  *amqp_batch.Config `json:"amqp"`
}

func (c SinksConfig) empty() bool {
	return c.MySQL == nil && c.Redis == nil && c.AMQP == nil
}

// AprioriConfig describes the two-phase frequent itemset run.
type AprioriConfig struct {
	Inputs     []string
	OutputRoot string
	// MinSupport has no default: zero is rejected rather than read as "unset".
	MinSupport int
	Shards     int
	Workers    int
	InRAM      bool
	SpillDir   string
	SplitLines int
	HealthAddr string
	Sinks      SinksConfig
	// Runner overrides DefaultRunner when set.
	Runner Runner
}

func (c *AprioriConfig) withDefaults() {
	if c.Shards <= 0 {
		c.Shards = apriori.DefaultShards
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Runner == nil {
		c.Runner = DefaultRunner()
	}
}

func (c AprioriConfig) validate() error {
	if len(c.Inputs) == 0 {
		return fmt.Errorf("input path is required")
	}
	if c.OutputRoot == "" {
		return fmt.Errorf("output root is required")
	}
	if c.MinSupport < 1 {
		return fmt.Errorf("min support must be >= 1, got %d", c.MinSupport)
	}
	if c.Sinks.MySQL != nil {
		if c.Sinks.MySQL.DB.User == "" || c.Sinks.MySQL.DB.Database == "" {
			return fmt.Errorf("sinks.mysql.db.user and sinks.mysql.db.database are required")
		}
	}
	return nil
}

// TrafficConfig describes the traffic volume aggregation run.
type TrafficConfig struct {
	Inputs     []string
	Output     string
	Workers    int
	InRAM      bool
	SpillDir   string
	SplitLines int
	Runner     Runner
}

func (c *TrafficConfig) withDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Runner == nil {
		c.Runner = DefaultRunner()
	}
}
