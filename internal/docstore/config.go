package docstore

import "time"

const (
	DefaultURI        = "mongodb://localhost:27017"
	DefaultDatabase   = "net_config"
	DefaultCollection = "network_config"
)

// Config holds the MongoDB connection settings.
// Env tags are relative; internal/config parses them under the NETCONFIG_MONGO_ prefix.
type Config struct {
	URI             string        `yaml:"uri" env:"URI"`                               // URI is the MongoDB connection string.
	Database        string        `yaml:"db" env:"DB"`                                 // Database receives both collections.
	Collection      string        `yaml:"collection" env:"COLLECTION"`                 // Collection stores devices; chunks go to <Collection>_chunks.
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`       // ConnectTimeout bounds each connection attempt.
	MaxPoolSize     uint64        `yaml:"max_pool_size" env:"MAX_POOL_SIZE"`           // MaxPoolSize is the connection pool ceiling.
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"MAX_CONN_IDLE_TIME"` // MaxConnIdleTime closes idle pooled connections.
	RetryAttempts   int           `yaml:"retry_attempts" env:"RETRY_ATTEMPTS"`         // RetryAttempts is the number of connection attempts.
	RetryInterval   time.Duration `yaml:"retry_interval" env:"RETRY_INTERVAL"`         // RetryInterval is the pause between attempts.
}

// DefaultConfig returns settings for a local, unauthenticated server.
func DefaultConfig() Config {
	return Config{
		URI:             DefaultURI,
		Database:        DefaultDatabase,
		Collection:      DefaultCollection,
		ConnectTimeout:  10 * time.Second,
		MaxPoolSize:     10,
		MaxConnIdleTime: 300 * time.Second,
		RetryAttempts:   3,
		RetryInterval:   2 * time.Second,
	}
}

// ChunksCollection returns the name of the chunk collection.
func (c Config) ChunksCollection() string {
	return c.Collection + "_chunks"
}
