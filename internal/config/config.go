package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Job        JobConfig        `mapstructure:"job" validate:"required"`
	Task       TaskConfig       `mapstructure:"task" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// PublicDir overrides the embedded static assets when set.
	PublicDir          string        `mapstructure:"public_dir"`
	MaxBodyBytes       int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" validate:"gte=0"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout" validate:"gt=0s"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout" validate:"gt=0s"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout" validate:"gt=0s"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0s"`
}

// JobConfig controls job retention and the backing store.
type JobConfig struct {
	Retention     time.Duration `mapstructure:"retention" validate:"gt=0s"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0s"`
	Store         string        `mapstructure:"store" validate:"required,oneof=memory redis"`
	RedisAddr     string        `mapstructure:"redis_addr" validate:"required_if=Store redis"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
}

// TaskConfig sizes the background worker pool.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"gt=0"`
}

// GenerationConfig tunes the template generator.
type GenerationConfig struct {
	ImageBaseURL  string        `mapstructure:"image_base_url" validate:"required,url"`
	TextDelayMin  time.Duration `mapstructure:"text_delay_min" validate:"gte=0s"`
	TextDelayMax  time.Duration `mapstructure:"text_delay_max" validate:"gtefield=TextDelayMin"`
	ImageDelayMin time.Duration `mapstructure:"image_delay_min" validate:"gte=0s"`
	ImageDelayMax time.Duration `mapstructure:"image_delay_max" validate:"gtefield=ImageDelayMin"`
}
