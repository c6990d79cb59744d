package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. CAROUSEL_SERVER_PORT.
const EnvPrefix = "CAROUSEL"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.public_dir", "")
	v.SetDefault("server.max_body_bytes", 1_000_000)
	v.SetDefault("server.rate_limit_per_minute", 60)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("job.retention", 30*time.Minute)
	v.SetDefault("job.sweep_interval", time.Minute)
	v.SetDefault("job.store", "memory")
	v.SetDefault("job.redis_addr", "")
	v.SetDefault("job.redis_password", "")
	v.SetDefault("job.redis_prefix", "carousel")

	v.SetDefault("task.worker_count", 4)
	v.SetDefault("task.queue_size", 100)

	v.SetDefault("generation.image_base_url", "https://picsum.photos")
	v.SetDefault("generation.text_delay_min", 350*time.Millisecond)
	v.SetDefault("generation.text_delay_max", 600*time.Millisecond)
	v.SetDefault("generation.image_delay_min", 220*time.Millisecond)
	v.SetDefault("generation.image_delay_max", 500*time.Millisecond)
}

// Load reads configuration from defaults, an optional config.yaml in the
// working directory, and CAROUSEL_* environment variables, in increasing
// order of precedence.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path searches
// the working directory for config.yaml and tolerates its absence.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
