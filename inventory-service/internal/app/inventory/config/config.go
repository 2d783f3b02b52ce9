package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config содержит все настройки Inventory Service
// Загружается один раз в main и передается в конструкторы компонентов
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Mongo    MongoConfig
	JWT      JWTConfig
	Alerts   AlertsConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig - настройки подключения к реляционной БД
// Driver: postgres (по умолчанию) или mysql (совместимость со старой инсталляцией)
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool // Создать таблицы через gorm AutoMigrate (только для локальной разработки)
}

// RedisConfig - настройки Redis для кеширования списка категорий
type RedisConfig struct {
	Enabled       bool
	Host          string
	Port          string
	Password      string
	DB            int
	CategoriesTTL time.Duration
}

// KafkaConfig - настройки Kafka для событий о товарах и алертах
type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	ProductTopic string // PRODUCT_CREATED, PRODUCT_UPDATED
	AlertTopic   string // ALERT_CREATED
}

// MongoConfig - журнал проходов генератора алертов (пустой URI отключает журнал)
type MongoConfig struct {
	URI      string
	Database string
}

// JWTConfig - проверка JWT токенов на изменяющих эндпоинтах
// Пустой секрет отключает аутентификацию
type JWTConfig struct {
	Secret       string
	AllowedRoles []string
}

// AlertsConfig - параметры генератора алертов по остаткам
type AlertsConfig struct {
	DedupWindow    time.Duration // Окно дедупликации по (producto_id, tipo_alerta)
	ListWindow     time.Duration // За какой период отдаются алерты в списке
	ListLimit      int
	GenerateOnRead bool // Запускать генерацию перед каждым чтением списка
	SerializeDedup bool // Проверка и вставка в одной транзакции с блокировкой строки товара
	ScanEnabled    bool
	ScanSchedule   string
}

// LoggingConfig - уровень логов и опциональный Logstash
type LoggingConfig struct {
	Level        string
	LogstashAddr string
}

// Load загружает конфигурацию из переменных окружения
// и опционального config.yaml / .env в рабочей директории
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// .env необязателен
	_ = v.MergeInConfig()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetString("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Enabled:       v.GetBool("REDIS_ENABLED"),
			Host:          v.GetString("REDIS_HOST"),
			Port:          v.GetString("REDIS_PORT"),
			Password:      v.GetString("REDIS_PASSWORD"),
			DB:            v.GetInt("REDIS_DB"),
			CategoriesTTL: v.GetDuration("REDIS_CATEGORIES_TTL"),
		},
		Kafka: KafkaConfig{
			Enabled:      v.GetBool("KAFKA_ENABLED"),
			Brokers:      splitList(v.GetString("KAFKA_BROKERS")),
			ProductTopic: v.GetString("KAFKA_PRODUCT_TOPIC"),
			AlertTopic:   v.GetString("KAFKA_ALERT_TOPIC"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("MONGO_URI"),
			Database: v.GetString("MONGO_DATABASE"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AllowedRoles: splitList(v.GetString("JWT_ALLOWED_ROLES")),
		},
		Alerts: AlertsConfig{
			DedupWindow:    v.GetDuration("ALERTS_DEDUP_WINDOW"),
			ListWindow:     v.GetDuration("ALERTS_LIST_WINDOW"),
			ListLimit:      v.GetInt("ALERTS_LIST_LIMIT"),
			GenerateOnRead: v.GetBool("ALERTS_GENERATE_ON_READ"),
			SerializeDedup: v.GetBool("ALERTS_SERIALIZE_DEDUP"),
			ScanEnabled:    v.GetBool("ALERTS_SCAN_ENABLED"),
			ScanSchedule:   v.GetString("ALERTS_SCAN_SCHEDULE"),
		},
		Logging: LoggingConfig{
			Level:        v.GetString("LOG_LEVEL"),
			LogstashAddr: v.GetString("LOGSTASH_ADDR"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "5000")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "inventario")
	v.SetDefault("DB_PASSWORD", "inventario")
	v.SetDefault("DB_NAME", "inventario")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_CATEGORIES_TTL", "5m")

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_PRODUCT_TOPIC", "inventory.product-events")
	v.SetDefault("KAFKA_ALERT_TOPIC", "inventory.stock-alerts")

	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "inventario")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ALLOWED_ROLES", "admin,manager")

	v.SetDefault("ALERTS_DEDUP_WINDOW", "24h")
	v.SetDefault("ALERTS_LIST_WINDOW", "168h")
	v.SetDefault("ALERTS_LIST_LIMIT", 20)
	v.SetDefault("ALERTS_GENERATE_ON_READ", true)
	v.SetDefault("ALERTS_SERIALIZE_DEDUP", false)
	v.SetDefault("ALERTS_SCAN_ENABLED", true)
	v.SetDefault("ALERTS_SCAN_SCHEDULE", "*/15 * * * *")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOGSTASH_ADDR", "")
}

// Validate проверяет значения, с которыми сервис не сможет работать корректно
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (expected postgres or mysql)", c.Database.Driver)
	}

	if c.Alerts.DedupWindow <= 0 {
		return fmt.Errorf("ALERTS_DEDUP_WINDOW must be positive, got %s", c.Alerts.DedupWindow)
	}
	if c.Alerts.ListWindow <= 0 {
		return fmt.Errorf("ALERTS_LIST_WINDOW must be positive, got %s", c.Alerts.ListWindow)
	}
	if c.Alerts.ListLimit <= 0 {
		return fmt.Errorf("ALERTS_LIST_LIMIT must be positive, got %d", c.Alerts.ListLimit)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}

	return nil
}

// DSN возвращает строку подключения для выбранного драйвера
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "mysql" {
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.DBName,
		)
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес сервера в формате host:port для HTTP сервера
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port для подключения
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// AuthEnabled сообщает, нужно ли проверять JWT на изменяющих эндпоинтах
func (c *JWTConfig) AuthEnabled() bool {
	return c.Secret != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
