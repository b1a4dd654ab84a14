package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/fortune-handler/internal/fortune"
	"github.com/angeloszaimis/fortune-handler/internal/httpserver"
	"github.com/angeloszaimis/fortune-handler/internal/strategy"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type FortuneConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Prefix   string `mapstructure:"prefix"`
	Timeout  string `mapstructure:"timeout"`
}

type GatewayConfig struct {
	Address     string   `mapstructure:"address"`
	FortunePath string   `mapstructure:"fortune_path"`
	MetricsPath string   `mapstructure:"metrics_path"`
	Targets     []string `mapstructure:"targets"`
}

type StrategyConfig struct {
	Type string `mapstructure:"type"`
}

type HealthCheckConfig struct {
	Path               string `mapstructure:"path"`
	Interval           string `mapstructure:"interval"`
	Timeout            string `mapstructure:"timeout"`
	HealthyThreshold   int    `mapstructure:"healthy_threshold"`
	UnhealthyThreshold int    `mapstructure:"unhealthy_threshold"`
}

type CircuitBreakerConfig struct {
	Threshold int    `mapstructure:"threshold"`
	Cooldown  string `mapstructure:"cooldown"`
}

type FrontendConfig struct {
	Address string `mapstructure:"address"`
}

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Fortune        FortuneConfig        `mapstructure:"fortune"`
	Gateway        GatewayConfig        `mapstructure:"gateway"`
	Strategy       StrategyConfig       `mapstructure:"strategy"`
	HealthCheck    HealthCheckConfig    `mapstructure:"health_check"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Frontend       FrontendConfig       `mapstructure:"frontend"`
}

// envBindings maps config keys to the variable names used by the deployed
// function, which predate the dotted key scheme.
var envBindings = map[string]string{
	"fortune.prefix":   "MSG_PREFIX",
	"fortune.endpoint": "FORTUNE_ENDPOINT",
	"fortune.timeout":  "FORTUNE_TIMEOUT",
	"logging.level":    "LOG_LEVEL",
	"gateway.targets":  "GATEWAY_TARGETS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("fortune.endpoint", fortune.DefaultEndpoint)
	v.SetDefault("fortune.prefix", "")
	v.SetDefault("fortune.timeout", "0s")
	v.SetDefault("gateway.address", ":8080")
	v.SetDefault("gateway.fortune_path", "/fortune")
	v.SetDefault("gateway.metrics_path", "/metrics")
	v.SetDefault("gateway.targets", []string{})
	v.SetDefault("strategy.type", strategy.RoundRobin)
	v.SetDefault("health_check.path", "/health")
	v.SetDefault("health_check.interval", "30s")
	v.SetDefault("health_check.timeout", "5s")
	v.SetDefault("health_check.healthy_threshold", 2)
	v.SetDefault("health_check.unhealthy_threshold", 2)
	v.SetDefault("circuit_breaker.threshold", 5)
	v.SetDefault("circuit_breaker.cooldown", "30s")
	v.SetDefault("frontend.address", ":8081")
}

// Load reads the configuration from the working directory. A missing .env
// or config.yaml is not an error.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path; an empty path searches
// ./config and the working directory.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.String("error", err.Error()))
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("config file not found, using defaults and environment variables")
	} else {
		slog.Debug("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Gateway.Targets = splitTargets(cfg.Gateway.Targets)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// splitTargets accepts both a YAML list and a comma separated environment value.
func splitTargets(raw []string) []string {
	var targets []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				targets = append(targets, part)
			}
		}
	}
	return targets
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server),
		validation.Field(&c.Logging),
		validation.Field(&c.Fortune),
		validation.Field(&c.Gateway),
		validation.Field(&c.Strategy),
		validation.Field(&c.HealthCheck),
		validation.Field(&c.CircuitBreaker),
		validation.Field(&c.Frontend),
	)
}

func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
	)
}

func (c LoggingConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level,
			validation.Required,
			validation.By(func(value interface{}) error {
				level, _ := value.(string)
				return validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError).
					Validate(strings.ToLower(level))
			}),
		),
	)
}

func (c FortuneConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Endpoint, validation.Required, validation.By(validateURL)),
		validation.Field(&c.Timeout, validation.Required, validation.By(validateDuration)),
	)
}

func (c GatewayConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Address, validation.Required, validation.By(httpserver.ValidateAddress)),
		validation.Field(&c.FortunePath, validation.Required, validation.By(validatePath)),
		validation.Field(&c.MetricsPath, validation.Required, validation.By(validatePath)),
		validation.Field(&c.Targets, validation.Each(validation.By(validateURL))),
	)
}

func (c StrategyConfig) Validate() error {
	names := make([]interface{}, len(strategy.Names))
	for i, name := range strategy.Names {
		names[i] = name
	}

	return validation.ValidateStruct(&c,
		validation.Field(&c.Type, validation.Required, validation.In(names...)),
	)
}

func (c HealthCheckConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Path, validation.Required, validation.By(validatePath)),
		validation.Field(&c.Interval, validation.Required, validation.By(validatePositiveDuration)),
		validation.Field(&c.Timeout, validation.Required, validation.By(validatePositiveDuration)),
		validation.Field(&c.HealthyThreshold, validation.Required, validation.Min(1)),
		validation.Field(&c.UnhealthyThreshold, validation.Required, validation.Min(1)),
	)
}

func (c CircuitBreakerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Threshold, validation.Min(0)),
		validation.Field(&c.Cooldown, validation.Required, validation.By(validateDuration)),
	)
}

func (c FrontendConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Address, validation.Required, validation.By(httpserver.ValidateAddress)),
	)
}

// Duration parses a validated duration field.
func Duration(value string) time.Duration {
	d, _ := time.ParseDuration(value)
	return d
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}
	if d < 0 {
		return validation.NewError("validation_negative_duration", "must not be negative")
	}

	return nil
}

func validatePositiveDuration(value interface{}) error {
	if err := validateDuration(value); err != nil {
		return err
	}
	if Duration(value.(string)) == 0 {
		return validation.NewError("validation_zero_duration", "must be greater than zero")
	}
	return nil
}

func validatePath(value interface{}) error {
	path, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if !strings.HasPrefix(path, "/") {
		return validation.NewError("validation_invalid_path", "must start with /")
	}
	return nil
}

func validateURL(value interface{}) error {
	rawURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if rawURL == "" {
		return validation.NewError("validation_empty_url", "URL cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
