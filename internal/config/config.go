package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Notify   NotifyConfig   `yaml:"notify"`
	Review   ReviewConfig   `yaml:"review"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LLMConfig holds the contract-analysis model settings.
type LLMConfig struct {
	APIKey      string        `yaml:"api_key"      env:"LLM_API_KEY"      env-required:"true"`
	Model       string        `yaml:"model"        env:"LLM_MODEL"        env-default:"claude-sonnet-4-20250514"`
	MaxTokens   int           `yaml:"max_tokens"   env:"LLM_MAX_TOKENS"   env-default:"4096"`
	CallTimeout time.Duration `yaml:"call_timeout" env:"LLM_CALL_TIMEOUT" env-default:"120s"`
}

// NotifyConfig holds review-request notification settings.
// An empty WebhookURL disables delivery; RequestReview then reports
// notified=false without attempting a call.
type NotifyConfig struct {
	WebhookURL   string        `yaml:"webhook_url"   env:"NOTIFY_WEBHOOK_URL"`
	Timeout      time.Duration `yaml:"timeout"       env:"NOTIFY_TIMEOUT"       env-default:"5s"`
	AwaitTimeout time.Duration `yaml:"await_timeout" env:"NOTIFY_AWAIT_TIMEOUT" env-default:"2s"`
}

// ReviewConfig holds workflow-engine settings.
type ReviewConfig struct {
	// StuckAnalysisAge is the minimum age before an ANALYZING item is
	// considered abandoned by the reset sweep.
	StuckAnalysisAge time.Duration `yaml:"stuck_analysis_age" env:"REVIEW_STUCK_ANALYSIS_AGE" env-default:"30m"`
	// FeedbackClauseLimit caps clause text length in feedback exports.
	FeedbackClauseLimit int `yaml:"feedback_clause_limit" env:"REVIEW_FEEDBACK_CLAUSE_LIMIT" env-default:"200"`
	// MaxFindingsPerContract bounds manual finding additions.
	MaxFindingsPerContract int `yaml:"max_findings_per_contract" env:"REVIEW_MAX_FINDINGS" env-default:"200"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,X-Actor-Name,X-Actor-Email"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}
