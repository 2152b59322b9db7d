// /internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"crypto-market-scanner/pkg/period"

	"github.com/joho/godotenv"
)

// ============================================
// КОНФИГУРАЦИЯ БАЗЫ ДАННЫХ
// ============================================

// DatabaseConfig - конфигурация журнала сканов в PostgreSQL
type DatabaseConfig struct {
	Host     string `mapstructure:"DB_HOST"`
	Port     int    `mapstructure:"DB_PORT"`
	User     string `mapstructure:"DB_USER"`
	Password string `mapstructure:"DB_PASSWORD"`
	Name     string `mapstructure:"DB_NAME"`
	SSLMode  string `mapstructure:"DB_SSLMODE"`

	Enabled bool `mapstructure:"DB_ENABLED"`

	// Настройки пула соединений
	MaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	MaxConnLifetime time.Duration `mapstructure:"DB_MAX_CONN_LIFETIME"`
	MaxConnIdleTime time.Duration `mapstructure:"DB_MAX_CONN_IDLE_TIME"`
}

// RedisConfig конфигурация Redis
type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`     // localhost
	Port     int    `mapstructure:"REDIS_PORT"`     // 6379
	Password string `mapstructure:"REDIS_PASSWORD"` // пустой или пароль
	DB       int    `mapstructure:"REDIS_DB"`       // 0

	Enabled   bool   `mapstructure:"REDIS_ENABLED"`
	KeyPrefix string `mapstructure:"REDIS_KEY_PREFIX"` // scanner:

	// Настройки пула соединений
	PoolSize     int           `mapstructure:"REDIS_POOL_SIZE"`      // 10
	MinIdleConns int           `mapstructure:"REDIS_MIN_IDLE_CONNS"` // 2
	MaxRetries   int           `mapstructure:"REDIS_MAX_RETRIES"`    // 3
	DialTimeout  time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`   // 5s
	ReadTimeout  time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`   // 3s
	WriteTimeout time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`  // 3s

	// Время жизни ключей
	SymbolsCacheTTL time.Duration `mapstructure:"SYMBOLS_CACHE_TTL"` // 1h
	SnapshotTTL     time.Duration `mapstructure:"SNAPSHOT_TTL"`      // 15m
}

// ============================================
// БИРЖА И СКАНЕР
// ============================================

// ExchangeConfig - доступ к REST API Binance
type ExchangeConfig struct {
	BaseURL     string        `mapstructure:"BINANCE_API_URL"`
	APIKey      string        `mapstructure:"BINANCE_API_KEY"`
	HTTPTimeout time.Duration `mapstructure:"HTTP_TIMEOUT"`
	UserAgent   string        `mapstructure:"HTTP_USER_AGENT"`
}

// ScannerConfig - параметры скана и рейтингов
type ScannerConfig struct {
	QuoteAsset            string        `mapstructure:"QUOTE_ASSET"`
	VolatilityInterval    string        `mapstructure:"VOLATILITY_INTERVAL"`
	VolatilityLimit       int           `mapstructure:"VOLATILITY_LIMIT"`
	MoverIntervals        []string      `mapstructure:"MOVER_INTERVALS"`
	MoversCandleLimit     int           `mapstructure:"MOVERS_CANDLE_LIMIT"`
	TopVolatile           int           `mapstructure:"TOP_VOLATILE"`
	TopMovers             int           `mapstructure:"TOP_MOVERS"`
	ScanInterval          time.Duration `mapstructure:"SCAN_INTERVAL"`
	ScanTimeout           time.Duration `mapstructure:"SCAN_TIMEOUT"`
	AlignSchedule         bool          `mapstructure:"SCAN_ALIGN"`
	MaxConcurrentRequests int           `mapstructure:"MAX_CONCURRENT_REQUESTS"`
}

// EventBusConfig - настройки шины событий
type EventBusConfig struct {
	BufferSize    int  `mapstructure:"EVENT_BUS_BUFFER_SIZE"`
	WorkerCount   int  `mapstructure:"EVENT_BUS_WORKER_COUNT"`
	EnableLogging bool `mapstructure:"EVENT_BUS_ENABLE_LOGGING"`
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level string `mapstructure:"LOG_LEVEL"`
	File  string `mapstructure:"LOG_FILE"`
}

// Config - конфигурация приложения
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	DebugMode   bool   `mapstructure:"DEBUG_MODE"`

	Exchange ExchangeConfig
	Scanner  ScannerConfig
	Redis    RedisConfig
	Database DatabaseConfig
	EventBus EventBusConfig
	Logging  LoggingConfig
}

// ============================================
// ЗАГРУЗКА КОНФИГУРАЦИИ
// ============================================

// LoadConfig загружает конфигурацию из .env файла и переменных окружения.
// Отсутствие файла не ошибка: используются переменные окружения.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			log.Printf("⚠️  Config file %s not found, using environment variables", path)
		}
	}

	cfg := &Config{}

	// ======================
	// ОСНОВНЫЕ НАСТРОЙКИ
	// ======================
	cfg.Environment = getEnv("ENVIRONMENT", "production")
	cfg.DebugMode = getEnvBool("DEBUG_MODE", false)

	// ======================
	// БИРЖА
	// ======================
	cfg.Exchange.BaseURL = strings.TrimRight(getEnv("BINANCE_API_URL", "https://api.binance.com"), "/")
	cfg.Exchange.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.Exchange.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", 10*time.Second)
	cfg.Exchange.UserAgent = getEnv("HTTP_USER_AGENT", "CryptoMarketScanner/1.0")

	// ======================
	// СКАНЕР
	// ======================
	cfg.Scanner.QuoteAsset = strings.ToUpper(getEnv("QUOTE_ASSET", "USDT"))
	cfg.Scanner.VolatilityInterval = strings.ToLower(getEnv("VOLATILITY_INTERVAL", period.DefaultVolatilityPeriod))
	cfg.Scanner.VolatilityLimit = getEnvInt("VOLATILITY_LIMIT", 60)
	cfg.Scanner.MoversCandleLimit = getEnvInt("MOVERS_CANDLE_LIMIT", 2)
	cfg.Scanner.TopVolatile = getEnvInt("TOP_VOLATILE", 10)
	cfg.Scanner.TopMovers = getEnvInt("TOP_MOVERS", 5)
	cfg.Scanner.ScanInterval = getEnvDuration("SCAN_INTERVAL", 5*time.Minute)
	cfg.Scanner.ScanTimeout = getEnvDuration("SCAN_TIMEOUT", 2*time.Minute)
	cfg.Scanner.AlignSchedule = getEnvBool("SCAN_ALIGN", false)
	cfg.Scanner.MaxConcurrentRequests = getEnvInt("MAX_CONCURRENT_REQUESTS", 20)

	intervals, err := period.ParseList(getEnv("MOVER_INTERVALS", period.DefaultMoverPeriods))
	if err != nil {
		return nil, fmt.Errorf("MOVER_INTERVALS: %w", err)
	}
	cfg.Scanner.MoverIntervals = intervals

	// ======================
	// REDIS
	// ======================
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.PoolSize = getEnvInt("REDIS_POOL_SIZE", 10)
	cfg.Redis.MinIdleConns = getEnvInt("REDIS_MIN_IDLE_CONNS", 2)
	cfg.Redis.MaxRetries = getEnvInt("REDIS_MAX_RETRIES", 3)
	cfg.Redis.DialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.Redis.ReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.Redis.WriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.Redis.SymbolsCacheTTL = getEnvDuration("SYMBOLS_CACHE_TTL", time.Hour)
	cfg.Redis.SnapshotTTL = getEnvDuration("SNAPSHOT_TTL", 15*time.Minute)
	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)
	cfg.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", "scanner:")

	// ======================
	// БАЗА ДАННЫХ
	// ======================
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", "")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 5)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 2)
	cfg.Database.MaxConnLifetime = getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	cfg.Database.MaxConnIdleTime = getEnvDuration("DB_MAX_CONN_IDLE_TIME", 10*time.Minute)
	cfg.Database.Enabled = getEnvBool("DB_ENABLED", false)

	// ======================
	// EVENT BUS И ЛОГИ
	// ======================
	cfg.EventBus.BufferSize = getEnvInt("EVENT_BUS_BUFFER_SIZE", 100)
	cfg.EventBus.WorkerCount = getEnvInt("EVENT_BUS_WORKER_COUNT", 2)
	cfg.EventBus.EnableLogging = getEnvBool("EVENT_BUS_ENABLE_LOGGING", true)

	cfg.Logging.Level = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Logging.File = getEnv("LOG_FILE", "")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ============================================
// ВАЛИДАЦИЯ
// ============================================

// validate проверяет параметры окружения. Параметры скана дополнительно
// проверяет оркестратор перед каждым запуском.
func (c *Config) validate() error {
	var validationErrors []string

	if c.Exchange.BaseURL == "" {
		validationErrors = append(validationErrors, "BINANCE_API_URL is required")
	}
	if c.Exchange.HTTPTimeout <= 0 {
		validationErrors = append(validationErrors, "HTTP_TIMEOUT must be positive")
	}
	if !period.IsValidPeriod(c.Scanner.VolatilityInterval) {
		validationErrors = append(validationErrors, fmt.Sprintf("VOLATILITY_INTERVAL %q is not supported", c.Scanner.VolatilityInterval))
	}
	if c.Scanner.ScanInterval <= 0 {
		validationErrors = append(validationErrors, "SCAN_INTERVAL must be positive")
	}
	if c.Scanner.MaxConcurrentRequests <= 0 {
		validationErrors = append(validationErrors, "MAX_CONCURRENT_REQUESTS must be positive")
	}

	if c.Database.Enabled {
		if c.Database.User == "" {
			validationErrors = append(validationErrors, "DB_USER is required when DB_ENABLED")
		}
		if c.Database.Name == "" {
			validationErrors = append(validationErrors, "DB_NAME is required when DB_ENABLED")
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		validationErrors = append(validationErrors, "LOG_LEVEL должен быть debug, info, warn или error")
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("%s", strings.Join(validationErrors, "; "))
	}
	return nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	return c.validate()
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ
// ============================================

// GetPostgresDSN возвращает DSN для подключения к PostgreSQL
func (c *Config) GetPostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddress возвращает адрес Redis
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// IsDev возвращает true для окружения разработки
func (c *Config) IsDev() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// PrintSummary выводит основные параметры в лог
func (c *Config) PrintSummary() {
	log.Printf("📋 Конфигурация сканера:")
	log.Printf("   • Окружение: %s", c.Environment)
	log.Printf("   • API: %s (ключ: %v)", c.Exchange.BaseURL, c.Exchange.APIKey != "")
	log.Printf("   • Котируемый актив: %s", c.Scanner.QuoteAsset)
	log.Printf("   • Волатильность: %s x %d, топ %d",
		c.Scanner.VolatilityInterval, c.Scanner.VolatilityLimit, c.Scanner.TopVolatile)
	log.Printf("   • Лидеры: %s (свечей %d), топ %d",
		strings.Join(c.Scanner.MoverIntervals, ","), c.Scanner.MoversCandleLimit, c.Scanner.TopMovers)
	log.Printf("   • Интервал скана: %v, параллельных запросов: %d",
		c.Scanner.ScanInterval, c.Scanner.MaxConcurrentRequests)
	log.Printf("   • Redis: %v (%s)", c.Redis.Enabled, c.GetRedisAddress())
	log.Printf("   • PostgreSQL: %v (%s:%d/%s)", c.Database.Enabled, c.Database.Host, c.Database.Port, c.Database.Name)
	log.Printf("   • Уровень логирования: %s", c.Logging.Level)
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
// ============================================

func getEnv(key, defaultValue string) string {
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
