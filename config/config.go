package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"gen-data-go/generator"
)

// Config holds every runtime setting. The zero-config defaults reproduce the
// standard run: 1000 students written to ./gen_data.xlsx.
type Config struct {
	Output   string
	Count    int
	Seed     uint64
	LogLevel string
	Redis    RedisConfig
	Port     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// New returns a viper instance with defaults and GENDATA_ environment binding
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("output", "./gen_data.xlsx")
	v.SetDefault("count", generator.DefaultCount)
	v.SetDefault("seed", 0)
	v.SetDefault("log-level", "info")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 8)
	v.SetDefault("http-server.port", "8080")

	v.SetEnvPrefix("gendata")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file into v and returns the resolved settings
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
		}
	}

	return &Config{
		Output:   v.GetString("output"),
		Count:    v.GetInt("count"),
		Seed:     v.GetUint64("seed"),
		LogLevel: v.GetString("log-level"),
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Port: v.GetString("http-server.port"),
	}, nil
}

// GeneratorOptions returns the default generator options with the configured count
func (c *Config) GeneratorOptions() generator.Options {
	opts := generator.DefaultOptions()
	opts.Count = c.Count
	return opts
}
