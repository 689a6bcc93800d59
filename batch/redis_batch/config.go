package redis_batch

type ConnConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func (c *ConnConfig) WithDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 6379
	}
}

// SinkConfig configures frequent itemset import into Redis hashes, one hash
// per phase and country: KeyPrefix + phase + ":" + country.
type SinkConfig struct {
	KeyPrefix string `json:"key_prefix"`
	Replace   bool   `json:"replace"`
	ScanCount int    `json:"scan_count"`
}

func (c *SinkConfig) WithDefaults() {
	if c.KeyPrefix == "" {
		c.KeyPrefix = "freqset:"
	}
	if c.ScanCount <= 0 {
		c.ScanCount = 1000
	}
}
