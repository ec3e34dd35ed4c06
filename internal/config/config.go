package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all server settings in correct types.
type Config struct {
	Port              string        `mapstructure:"port" yaml:"port"`
	DownloadDir       string        `mapstructure:"download_dir" yaml:"download_dir"`
	MaxConcurrentJobs int           `mapstructure:"max_concurrent_jobs" yaml:"max_concurrent_jobs"`
	AdmissionWait     time.Duration `mapstructure:"admission_wait" yaml:"admission_wait"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	SessionSecret   string   `mapstructure:"session_secret" yaml:"session_secret"`
	SessionMaxJobs  int      `mapstructure:"session_max_jobs" yaml:"session_max_jobs"`
	AllowedBitrates []string `mapstructure:"allowed_bitrates" yaml:"allowed_bitrates"`
	DefaultBitrate  string   `mapstructure:"default_bitrate" yaml:"default_bitrate"`

	RetentionAge  time.Duration `mapstructure:"retention_age" yaml:"retention_age"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`

	SocketTimeout   time.Duration `mapstructure:"socket_timeout" yaml:"socket_timeout"`
	DownloadRetries int           `mapstructure:"download_retries" yaml:"download_retries"`
	Proxy           string        `mapstructure:"proxy" yaml:"proxy"`

	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	RequestBurst      int     `mapstructure:"request_burst" yaml:"request_burst"`

	Redis RedisConfig `mapstructure:"redis" yaml:"redis"`
	Log   LogConfig   `mapstructure:"log" yaml:"log"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

type LogConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	Level         string `mapstructure:"level" yaml:"level"`
	IncludeStdout bool   `mapstructure:"include_stdout" yaml:"include_stdout"`
}

// Load reads configuration from an optional yaml file, then lets YT2MP3_*
// environment variables override everything.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", ":8000")
	v.SetDefault("download_dir", "downloads")
	v.SetDefault("max_concurrent_jobs", 3)
	v.SetDefault("admission_wait", 10*time.Second)
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("session_secret", "change-this-in-production")
	v.SetDefault("session_max_jobs", 50)
	v.SetDefault("allowed_bitrates", []string{"128", "192", "256", "320"})
	v.SetDefault("default_bitrate", "320")
	v.SetDefault("retention_age", time.Hour)
	v.SetDefault("sweep_interval", 5*time.Minute)
	v.SetDefault("socket_timeout", 30*time.Second)
	v.SetDefault("download_retries", 2)
	v.SetDefault("requests_per_second", 10.0)
	v.SetDefault("request_burst", 20)
	v.SetDefault("log.path", "yt2mp3.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.include_stdout", true)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("YT2MP3")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// The extraction tool honors the standard proxy variables; keep a copy
	// so the rest of the app can forward it explicitly.
	if cfg.Proxy == "" {
		if p := os.Getenv("HTTPS_PROXY"); p != "" {
			cfg.Proxy = p
		} else if p := os.Getenv("HTTP_PROXY"); p != "" {
			cfg.Proxy = p
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate ensures the server won't start with settings it cannot serve.
func (c *Config) validate() error {
	if c.MaxConcurrentJobs < 1 {
		c.MaxConcurrentJobs = 3
	}
	if c.SessionMaxJobs < 1 {
		return fmt.Errorf("session_max_jobs must be positive, got %d", c.SessionMaxJobs)
	}
	if len(c.AllowedBitrates) == 0 {
		return fmt.Errorf("allowed_bitrates must not be empty")
	}
	if !c.BitrateAllowed(c.DefaultBitrate) {
		return fmt.Errorf("default_bitrate %q is not in allowed_bitrates", c.DefaultBitrate)
	}
	if c.RetentionAge <= 0 {
		return fmt.Errorf("retention_age must be positive")
	}
	if !strings.HasPrefix(c.Port, ":") {
		c.Port = ":" + c.Port
	}
	return nil
}

// BitrateAllowed reports whether q is one of the accepted audio bitrates.
func (c *Config) BitrateAllowed(q string) bool {
	for _, b := range c.AllowedBitrates {
		if q == b {
			return true
		}
	}
	return false
}
