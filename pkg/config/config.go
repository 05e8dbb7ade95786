package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"livecast/pkg/utils"
	"livecast/pkg/validation"
)

// Config holds every runtime knob of the orchestrator. Values come from
// defaults, then an optional YAML file, then LIVECAST_* environment
// variables, in that order.
type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	WebSocket struct {
		Path         string        `yaml:"path"`
		PingInterval time.Duration `yaml:"ping_interval"`
		PongTimeout  time.Duration `yaml:"pong_timeout"`
		SendBuffer   int           `yaml:"send_buffer"`
	} `yaml:"websocket"`

	Storage struct {
		UploadDir      string `yaml:"upload_dir"`
		MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	} `yaml:"storage"`

	Encoder struct {
		FFmpegPath     string        `yaml:"ffmpeg_path"`
		FFprobePath    string        `yaml:"ffprobe_path"`
		ConfirmWindow  time.Duration `yaml:"confirm_window"`
		StopEscalation time.Duration `yaml:"stop_escalation"`
		ProbeTimeout   time.Duration `yaml:"probe_timeout"`
	} `yaml:"encoder"`

	Stream struct {
		Quality       string `yaml:"quality"`
		Bitrate       string `yaml:"bitrate"`
		AutoQueue     bool   `yaml:"auto_queue"`
		Notifications bool   `yaml:"notifications"`
	} `yaml:"stream"`

	Platform struct {
		APIBase     string        `yaml:"api_base"`
		Timeout     time.Duration `yaml:"timeout"`
		PageID      string        `yaml:"page_id"`
		AccessToken string        `yaml:"access_token"`
	} `yaml:"platform"`

	Metrics struct {
		SampleInterval time.Duration `yaml:"sample_interval"`
	} `yaml:"metrics"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Redis struct {
		Enabled   bool   `yaml:"enabled"`
		Address   string `yaml:"address"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		PoolSize  int    `yaml:"pool_size"`
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"redis"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`
		HTTP    struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
			MaxConcurrent     int     `yaml:"max_concurrent"`
		} `yaml:"http"`
		WebSocket struct {
			ConnectionsPerMinute int `yaml:"connections_per_minute"`
			MaxClients           int `yaml:"max_clients"`
		} `yaml:"websocket"`
	} `yaml:"rate_limiting"`

	Tracing struct {
		Enabled        bool    `yaml:"enabled"`
		JaegerEndpoint string  `yaml:"jaeger_endpoint"`
		SampleRate     float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`
}

// Validate checks configuration values
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown timeout must be positive")
	}

	if c.WebSocket.Path == "" {
		return fmt.Errorf("websocket path is required")
	}

	if c.WebSocket.PingInterval <= 0 {
		return fmt.Errorf("websocket ping interval must be positive")
	}

	if c.WebSocket.PongTimeout <= 0 {
		return fmt.Errorf("websocket pong timeout must be positive")
	}

	if c.WebSocket.SendBuffer <= 0 {
		return fmt.Errorf("websocket send buffer must be positive")
	}

	if c.Storage.UploadDir == "" {
		return fmt.Errorf("storage upload dir is required")
	}

	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("storage max upload bytes must be positive")
	}

	if c.Encoder.FFmpegPath == "" {
		return fmt.Errorf("encoder ffmpeg path is required")
	}

	if c.Encoder.FFprobePath == "" {
		return fmt.Errorf("encoder ffprobe path is required")
	}

	if c.Encoder.ConfirmWindow <= 0 {
		return fmt.Errorf("encoder confirm window must be positive")
	}

	if c.Encoder.StopEscalation <= 0 {
		return fmt.Errorf("encoder stop escalation must be positive")
	}

	if c.Encoder.ProbeTimeout <= 0 {
		return fmt.Errorf("encoder probe timeout must be positive")
	}

	if err := validation.ValidateQuality(c.Stream.Quality); err != nil {
		return fmt.Errorf("stream quality: %w", err)
	}

	if err := validation.ValidateBitrate(c.Stream.Bitrate); err != nil {
		return fmt.Errorf("stream bitrate: %w", err)
	}

	if c.Platform.APIBase == "" {
		return fmt.Errorf("platform api base is required")
	}

	if u, err := url.Parse(c.Platform.APIBase); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("platform api base must be an http(s) URL")
	}

	if c.Platform.Timeout <= 0 {
		return fmt.Errorf("platform timeout must be positive")
	}

	if c.Metrics.SampleInterval <= 0 {
		return fmt.Errorf("metrics sample interval must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging level must be one of debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging format must be json or console")
	}

	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis address is required when redis is enabled")
		}

		if c.Redis.DB < 0 {
			return fmt.Errorf("redis db must be >= 0")
		}

		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis pool size must be positive")
		}
	}

	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("http requests per second must be positive when rate limiting is enabled")
		}

		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("http burst must be positive when rate limiting is enabled")
		}

		if c.RateLimiting.HTTP.MaxConcurrent < 0 {
			return fmt.Errorf("http max concurrent must be >= 0")
		}

		if c.RateLimiting.WebSocket.ConnectionsPerMinute <= 0 {
			return fmt.Errorf("websocket connections per minute must be positive when rate limiting is enabled")
		}

		if c.RateLimiting.WebSocket.MaxClients < 0 {
			return fmt.Errorf("websocket max clients must be >= 0")
		}
	}

	if c.Tracing.Enabled {
		if c.Tracing.JaegerEndpoint == "" {
			return fmt.Errorf("jaeger endpoint is required when tracing is enabled")
		}

		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing sample rate must be between 0 and 1")
		}
	}

	return nil
}

// Load loads configuration from file with environment variable overrides
func Load(configPath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config.applyEnvOverrides()
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid default configuration: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvOverrides()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	config := &Config{}

	config.Server.Address = ":8080"
	config.Server.ReadTimeout = 15 * time.Second
	config.Server.WriteTimeout = 15 * time.Second
	config.Server.ShutdownTimeout = 10 * time.Second

	config.WebSocket.Path = "/ws/status"
	config.WebSocket.PingInterval = 30 * time.Second
	config.WebSocket.PongTimeout = 60 * time.Second
	config.WebSocket.SendBuffer = 16

	config.Storage.UploadDir = "./uploads"
	config.Storage.MaxUploadBytes = 4 << 30

	config.Encoder.FFmpegPath = "ffmpeg"
	config.Encoder.FFprobePath = "ffprobe"
	config.Encoder.ConfirmWindow = 2 * time.Second
	config.Encoder.StopEscalation = 5 * time.Second
	config.Encoder.ProbeTimeout = 10 * time.Second

	config.Stream.Quality = "1080p"
	config.Stream.Bitrate = "4000"
	config.Stream.AutoQueue = true
	config.Stream.Notifications = true

	config.Platform.APIBase = "https://graph.facebook.com/v19.0"
	config.Platform.Timeout = 15 * time.Second

	config.Metrics.SampleInterval = 5 * time.Second

	config.Monitoring.PrometheusEnabled = true

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Redis.Enabled = false
	config.Redis.Address = "localhost:6379"
	config.Redis.DB = 0
	config.Redis.PoolSize = 10
	config.Redis.KeyPrefix = "livecast:"

	config.RateLimiting.Enabled = true
	config.RateLimiting.HTTP.RequestsPerSecond = 50
	config.RateLimiting.HTTP.Burst = 100
	config.RateLimiting.HTTP.MaxConcurrent = 1000
	config.RateLimiting.WebSocket.ConnectionsPerMinute = 60
	config.RateLimiting.WebSocket.MaxClients = 256

	config.Tracing.Enabled = false
	config.Tracing.JaegerEndpoint = "http://localhost:14268/api/traces"
	config.Tracing.SampleRate = 1.0

	return config
}

// applyEnvOverrides applies environment variable overrides
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("LIVECAST_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}

	if dir := os.Getenv("LIVECAST_UPLOAD_DIR"); dir != "" {
		c.Storage.UploadDir = dir
	}

	if path := os.Getenv("LIVECAST_FFMPEG_PATH"); path != "" {
		c.Encoder.FFmpegPath = path
	}

	if path := os.Getenv("LIVECAST_FFPROBE_PATH"); path != "" {
		c.Encoder.FFprobePath = path
	}

	if base := os.Getenv("LIVECAST_PLATFORM_API_BASE"); base != "" {
		c.Platform.APIBase = base
	}

	if pageID := os.Getenv("LIVECAST_PAGE_ID"); pageID != "" {
		c.Platform.PageID = pageID
	}

	if token := os.Getenv("LIVECAST_ACCESS_TOKEN"); token != "" {
		c.Platform.AccessToken = token
	}

	if interval := os.Getenv("LIVECAST_SAMPLE_INTERVAL"); interval != "" {
		c.Metrics.SampleInterval = utils.ParseDurationSafe(interval, c.Metrics.SampleInterval)
	}

	if level := os.Getenv("LIVECAST_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}

	if format := os.Getenv("LIVECAST_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}

	if enabled := os.Getenv("LIVECAST_REDIS_ENABLED"); enabled != "" {
		if parsed, err := strconv.ParseBool(enabled); err == nil {
			c.Redis.Enabled = parsed
		}
	}

	if addr := os.Getenv("LIVECAST_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}

	if password := os.Getenv("LIVECAST_REDIS_PASSWORD"); password != "" {
		c.Redis.Password = password
	}

	if db := os.Getenv("LIVECAST_REDIS_DB"); db != "" {
		if parsed, err := strconv.Atoi(db); err == nil {
			c.Redis.DB = parsed
		}
	}
}
