package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App        AppConfig        `koanf:"app"`
	GRPC       GRPCConfig       `koanf:"grpc"`
	Log        LogConfig        `koanf:"log"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Tracing    TracingConfig    `koanf:"tracing"`
	Database   DatabaseConfig   `koanf:"database"`
	Cache      CacheConfig      `koanf:"cache"`
	Allocation AllocationConfig `koanf:"allocation"`
	Pricing    PricingConfig    `koanf:"pricing"`
	Report     ReportConfig     `koanf:"report"`
	History    HistoryConfig    `koanf:"history"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// GRPCConfig - настройки gRPC сервера
type GRPCConfig struct {
	Port              int             `koanf:"port"`
	MaxRecvMsgSize    int             `koanf:"max_recv_msg_size"` // bytes
	MaxSendMsgSize    int             `koanf:"max_send_msg_size"` // bytes
	MaxConcurrentConn int             `koanf:"max_concurrent_conn"`
	KeepAlive         KeepAliveConfig `koanf:"keepalive"`
}

// KeepAliveConfig - настройки keep-alive
type KeepAliveConfig struct {
	MaxConnectionIdle     time.Duration `koanf:"max_connection_idle"`
	MaxConnectionAge      time.Duration `koanf:"max_connection_age"`
	MaxConnectionAgeGrace time.Duration `koanf:"max_connection_age_grace"`
	Time                  time.Duration `koanf:"time"`
	Timeout               time.Duration `koanf:"timeout"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// DatabaseConfig - настройки базы данных
type DatabaseConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
	)
}

// CacheConfig - настройки кэширования результатов
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AllocationConfig - параметры движка распределения
type AllocationConfig struct {
	MaxHops      int           `koanf:"max_hops"`      // 0 = N-1
	MaxScenarios int64         `koanf:"max_scenarios"` // 0 = без ограничения
	Workers      int           `koanf:"workers"`
	Timeout      time.Duration `koanf:"timeout"`
	Coupling     string        `koanf:"coupling"`   // reference, directed
	IndexBase    int           `koanf:"index_base"` // 0 или 1 для входных запросов
}

// PricingConfig - цены за единицу полосы для KPI
type PricingConfig struct {
	CostPerUnit       float64 `koanf:"cost_per_unit"`
	RevenuePerUnit    float64 `koanf:"revenue_per_unit"`
	LostRevenueFactor float64 `koanf:"lost_revenue_factor"`
	Currency          string  `koanf:"currency"`
}

// ReportConfig - настройки отчётов
type ReportConfig struct {
	DefaultFormat  string `koanf:"default_format"` // text, markdown, csv, json, xlsx, pdf
	Author         string `koanf:"author"`
	IncludeDetails bool   `koanf:"include_details"`
}

// HistoryConfig - хранение истории запусков
type HistoryConfig struct {
	Enabled  bool `koanf:"enabled"`
	MaxItems int  `koanf:"max_items"` // для in-memory хранилища
}

var (
	validLevels        = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validCacheDrivers  = map[string]bool{"memory": true, "redis": true}
	validCouplings     = map[string]bool{"reference": true, "directed": true}
	validReportFormats = map[string]bool{"text": true, "markdown": true, "csv": true, "json": true, "xlsx": true, "pdf": true}
)

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.GRPC.Port <= 0 || c.GRPC.Port > 65535 {
		errs = append(errs, fmt.Sprintf("grpc.port must be between 1 and 65535, got %d", c.GRPC.Port))
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Cache.Enabled && !validCacheDrivers[c.Cache.Driver] {
		errs = append(errs, fmt.Sprintf("cache.driver must be one of: memory, redis, got %s", c.Cache.Driver))
	}

	// Движок
	if c.Allocation.MaxHops < 0 {
		errs = append(errs, "allocation.max_hops must be non-negative")
	}
	if c.Allocation.MaxScenarios < 0 {
		errs = append(errs, "allocation.max_scenarios must be non-negative")
	}
	if c.Allocation.Workers < 0 {
		errs = append(errs, "allocation.workers must be non-negative")
	}
	if c.Allocation.Coupling != "" && !validCouplings[c.Allocation.Coupling] {
		errs = append(errs, fmt.Sprintf("allocation.coupling must be one of: reference, directed, got %s", c.Allocation.Coupling))
	}
	if c.Allocation.IndexBase != 0 && c.Allocation.IndexBase != 1 {
		errs = append(errs, fmt.Sprintf("allocation.index_base must be 0 or 1, got %d", c.Allocation.IndexBase))
	}

	// Цены
	if c.Pricing.CostPerUnit < 0 || c.Pricing.RevenuePerUnit < 0 || c.Pricing.LostRevenueFactor < 0 {
		errs = append(errs, "pricing values must be non-negative")
	}

	if c.Report.DefaultFormat != "" && !validReportFormats[c.Report.DefaultFormat] {
		errs = append(errs, fmt.Sprintf("report.default_format must be one of: text, markdown, csv, json, xlsx, pdf, got %s", c.Report.DefaultFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
