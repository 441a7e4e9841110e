package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Data      DataConfig      `yaml:"data"`
	Report    ReportConfig    `yaml:"report"`
	Server    ServerConfig    `yaml:"server"`
	Logger    LoggerConfig    `yaml:"logger"`
	Security  SecurityConfig  `yaml:"security"`
}

type GeneratorConfig struct {
	Seed        int64  `yaml:"seed"`
	Customers   int    `yaml:"customers"`
	Products    int    `yaml:"products"`
	Orders      int    `yaml:"orders"`
	Sessions    int    `yaml:"sessions"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	SignupStart string `yaml:"signup_start"`
	SignupDays  int    `yaml:"signup_days"`
}

type DataConfig struct {
	RawDir     string `yaml:"raw_dir"`
	CleanDir   string `yaml:"clean_dir"`
	MasterPath string `yaml:"master_path"`
	SQLitePath string `yaml:"sqlite_path"`
}

type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
	TopN      int    `yaml:"top_n"`
	CacheDir  string `yaml:"cache_dir"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `yaml:"enable_rate_limit"`
	RateLimitRPS    int      `yaml:"rate_limit_rps"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	TrustedProxies  []string `yaml:"trusted_proxies"`
}

func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Seed:        42,
			Customers:   100_000,
			Products:    2_000,
			Orders:      300_000,
			Sessions:    400_000,
			Start:       "2019-01-01",
			End:         "2025-12-31",
			SignupStart: "2016-01-01",
			SignupDays:  365 * 6,
		},
		Data: DataConfig{
			RawDir:     "data",
			CleanDir:   "clean_data",
			MasterPath: "master_dataset.csv",
		},
		Report: ReportConfig{
			OutputDir: "eda_output",
			TopN:      10,
			CacheDir:  ".cache",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8084,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
		},
		Security: SecurityConfig{
			EnableRateLimit: true,
			RateLimitRPS:    100,
			RateLimitBurst:  10,
			AllowedOrigins:  []string{"http://localhost:8084"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", filepath.Base(path), err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	g := &c.Generator
	g.Seed = getEnvInt64("ECOMSIM_SEED", g.Seed)
	g.Customers = getEnvInt("ECOMSIM_CUSTOMERS", g.Customers)
	g.Products = getEnvInt("ECOMSIM_PRODUCTS", g.Products)
	g.Orders = getEnvInt("ECOMSIM_ORDERS", g.Orders)
	g.Sessions = getEnvInt("ECOMSIM_SESSIONS", g.Sessions)
	g.Start = getEnvString("ECOMSIM_START", g.Start)
	g.End = getEnvString("ECOMSIM_END", g.End)

	c.Data.RawDir = getEnvString("ECOMSIM_RAW_DIR", c.Data.RawDir)
	c.Data.CleanDir = getEnvString("ECOMSIM_CLEAN_DIR", c.Data.CleanDir)
	c.Data.MasterPath = getEnvString("ECOMSIM_MASTER_PATH", c.Data.MasterPath)
	c.Data.SQLitePath = getEnvString("ECOMSIM_SQLITE_PATH", c.Data.SQLitePath)

	c.Report.OutputDir = getEnvString("ECOMSIM_REPORT_DIR", c.Report.OutputDir)
	c.Report.TopN = getEnvInt("ECOMSIM_TOP_N", c.Report.TopN)
	c.Report.CacheDir = getEnvString("ECOMSIM_CACHE_DIR", c.Report.CacheDir)

	c.Server.Host = getEnvString("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Logger.Level = getEnvString("LOG_LEVEL", c.Logger.Level)
	c.Logger.Format = getEnvString("LOG_FORMAT", c.Logger.Format)

	c.Security.EnableRateLimit = getEnvBool("SECURITY_RATE_LIMIT_ENABLED", c.Security.EnableRateLimit)
	c.Security.RateLimitRPS = getEnvInt("SECURITY_RATE_LIMIT_RPS", c.Security.RateLimitRPS)
	c.Security.RateLimitBurst = getEnvInt("SECURITY_RATE_LIMIT_BURST", c.Security.RateLimitBurst)
	c.Security.AllowedOrigins = getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", c.Security.AllowedOrigins)
	c.Security.TrustedProxies = getEnvStringSlice("SECURITY_TRUSTED_PROXIES", c.Security.TrustedProxies)
}

// Validate is exported so command-line overrides can be re-checked after
// they are applied on top of a loaded configuration.
func (c *Config) Validate() error {
	g := c.Generator
	counts := []struct {
		name  string
		value int
	}{
		{"customers", g.Customers},
		{"products", g.Products},
		{"orders", g.Orders},
		{"sessions", g.Sessions},
	}
	for _, n := range counts {
		if n.value <= 0 {
			return fmt.Errorf("generator %s count must be positive, got %d", n.name, n.value)
		}
	}

	start, end, err := g.Window()
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("generator end %s must be after start %s", g.End, g.Start)
	}
	if _, err := g.SignupWindowStart(); err != nil {
		return err
	}
	if g.SignupDays <= 0 {
		return fmt.Errorf("generator signup days must be positive, got %d", g.SignupDays)
	}

	if c.Data.RawDir == "" {
		return fmt.Errorf("raw data directory cannot be empty")
	}
	if c.Data.CleanDir == "" {
		return fmt.Errorf("clean data directory cannot be empty")
	}
	if c.Data.MasterPath == "" {
		return fmt.Errorf("master dataset path cannot be empty")
	}
	if c.Report.OutputDir == "" {
		return fmt.Errorf("report output directory cannot be empty")
	}
	if c.Report.TopN <= 0 {
		return fmt.Errorf("report top n must be positive, got %d", c.Report.TopN)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

// Window returns the simulation window; End is inclusive, so the returned
// end is midnight of the day after.
func (g GeneratorConfig) Window() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", g.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("generator start: %w", err)
	}
	end, err := time.Parse("2006-01-02", g.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("generator end: %w", err)
	}
	return start, end.AddDate(0, 0, 1), nil
}

func (g GeneratorConfig) SignupWindowStart() (time.Time, error) {
	t, err := time.Parse("2006-01-02", g.SignupStart)
	if err != nil {
		return time.Time{}, fmt.Errorf("generator signup start: %w", err)
	}
	return t, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
