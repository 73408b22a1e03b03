package config

import (
	"time"

	pkgconfig "github.com/weiawesome/wes-io-live/idgen/pkg/config"
)

type Config struct {
	Server    ServerConfig
	GRPC      GRPCConfig
	Snowflake SnowflakeConfig
	ULID      ULIDConfig `mapstructure:"ulid"`
	Text      TextConfig
	NanoID    NanoIDConfig `mapstructure:"nanoid"`
	CUID2     CUID2Config  `mapstructure:"cuid2"`
	Log       LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	MaxBatch        int           `mapstructure:"max_batch"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type GRPCConfig struct {
	Host string
	Port int
}

// SnowflakeConfig configures the 64-bit generator. A negative datacenter or
// worker id is derived from the host.
type SnowflakeConfig struct {
	DatacenterID int64         `mapstructure:"datacenter_id"`
	WorkerID     int64         `mapstructure:"worker_id"`
	Epoch        int64         `mapstructure:"epoch"`
	Tolerance    time.Duration `mapstructure:"tolerance"`
}

type ULIDConfig struct {
	Tolerance time.Duration `mapstructure:"tolerance"`
}

// TextConfig configures the text generators. An empty suffix is derived
// from the host.
type TextConfig struct {
	Suffix    string        `mapstructure:"suffix"`
	Prefix    string        `mapstructure:"prefix"`
	Location  string        `mapstructure:"location"`
	Tolerance time.Duration `mapstructure:"tolerance"`
}

type NanoIDConfig struct {
	Size     int    `mapstructure:"size"`
	Alphabet string `mapstructure:"alphabet"`
}

type CUID2Config struct {
	Length int `mapstructure:"length"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.max_batch", 1000)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50053)
	v.SetDefault("snowflake.datacenter_id", -1)
	v.SetDefault("snowflake.worker_id", -1)
	v.SetDefault("snowflake.epoch", 1288834974657)
	v.SetDefault("snowflake.tolerance", "2s")
	v.SetDefault("ulid.tolerance", "10s")
	v.SetDefault("text.suffix", "")
	v.SetDefault("text.prefix", "")
	v.SetDefault("text.location", "UTC")
	v.SetDefault("text.tolerance", "5ms")
	v.SetDefault("nanoid.size", 21)
	v.SetDefault("nanoid.alphabet", "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	v.SetDefault("cuid2.length", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("grpc.port", "GRPC_PORT")
	v.BindEnv("snowflake.datacenter_id", "SNOWFLAKE_DATACENTER_ID")
	v.BindEnv("snowflake.worker_id", "SNOWFLAKE_WORKER_ID")
	v.BindEnv("snowflake.epoch", "SNOWFLAKE_EPOCH")
	v.BindEnv("text.suffix", "TEXTID_SUFFIX")
	v.BindEnv("text.prefix", "TEXTID_PREFIX")
	v.BindEnv("text.location", "TEXTID_LOCATION")
	v.BindEnv("nanoid.size", "NANOID_SIZE")
	v.BindEnv("nanoid.alphabet", "NANOID_ALPHABET")
	v.BindEnv("cuid2.length", "CUID2_LENGTH")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
