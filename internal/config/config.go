package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"       validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// LLMConfig contains all Gemini integration related settings.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"      validate:"required"`
	ModelName         string `mapstructure:"model_name"          validate:"required"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"     validate:"required,gt=0"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1"`
}

// RateLimitConfig contains the per-client request quota settings.
// RedisURL is optional; when set, limiter state is kept in Redis so the
// quota holds across multiple server instances. When empty, an in-process
// store is used.
type RateLimitConfig struct {
	PerMinute int    `mapstructure:"per_minute" validate:"required,gt=0"`
	PerHour   int    `mapstructure:"per_hour"   validate:"required,gt=0"`
	RedisURL  string `mapstructure:"redis_url"  validate:"omitempty,uri"`
}
