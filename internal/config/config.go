// Package config loads node configuration from the environment, following
// the key names a config-file reader would surface: app.log_level,
// app.log_dir, p2p.host, p2p.port, bank.code.
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

type Config struct {
	P2P     P2PConfig
	Metrics MetricsConfig
	Logging LoggingConfig
	Bank    BankConfig
	DB      DatabaseConfig
	Kafka   KafkaConfig
}

// MetricsConfig is the node's small observability-only HTTP surface
// (/prometheus, /events), separate from the line protocol port.
type MetricsConfig struct {
	Port int
}

type P2PConfig struct {
	Host           string
	Port           int
	ReadTimeoutMS  int
	ProxyTimeoutMS int
	ProxyPort      int
}

type LoggingConfig struct {
	Level string
	Dir   string
}

// BankConfig holds this node's identity. Code is populated by the identity
// resolver at startup and persisted back here so later config reads see it
// (spec.md's bank.code write-back).
type BankConfig struct {
	Code string
	mu   sync.RWMutex
}

func (b *BankConfig) Set(code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Code = code
}

func (b *BankConfig) Get() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.Code
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
}

// Load reads the process environment into a Config, applying the same
// defaults a freshly-installed node ships with.
func Load() *Config {
	return &Config{
		P2P: P2PConfig{
			Host:           getEnv("P2P_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("P2P_PORT", 65525),
			ReadTimeoutMS:  getEnvAsInt("P2P_READ_TIMEOUT_MS", 5000),
			ProxyTimeoutMS: getEnvAsInt("P2P_PROXY_TIMEOUT_MS", 5000),
			ProxyPort:      getEnvAsInt("P2P_DEFAULT_PROXY_PORT", 65525),
		},
		Metrics: MetricsConfig{
			Port: getEnvAsInt("APP_METRICS_PORT", 9090),
		},
		Logging: LoggingConfig{
			Level: getEnv("APP_LOG_LEVEL", "info"),
			Dir:   getEnv("APP_LOG_DIR", ""),
		},
		Bank: BankConfig{
			Code: getEnv("BANK_CODE", ""),
		},
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Database: getEnv("DB_NAME", "p2pbank"),
			User:     getEnv("DB_USER", "p2pbank"),
			Password: getEnv("DB_PASSWORD", "p2pbank"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvAsBool("KAFKA_ENABLED", true),
			Brokers: getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
