package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store drivers accepted in NAMES_STORE.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	Store  StoreConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Store: store}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// StoreConfig selects and configures the names store.
type StoreConfig struct {
	Driver string
	Path   string
	Seed   bool
}

func loadStoreConfig() (StoreConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("NAMES_STORE", DriverMemory))
	switch driver {
	case DriverMemory, DriverSQLite:
	default:
		return StoreConfig{}, fmt.Errorf("invalid NAMES_STORE value %q: want %q or %q", driver, DriverMemory, DriverSQLite)
	}

	seed, err := parseBoolEnv("NAMES_SEED", true)
	if err != nil {
		return StoreConfig{}, err
	}

	return StoreConfig{
		Driver: driver,
		Path:   getEnvOrDefault("NAMES_DB_PATH", "names.db"),
		Seed:   seed,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
