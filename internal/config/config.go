package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBDriver      string `yaml:"db_driver"`
	DBHost        string `yaml:"db_host"`
	DBPort        string `yaml:"db_port"`
	DBUser        string `yaml:"db_user"`
	DBPassword    string `yaml:"db_password"`
	DBName        string `yaml:"db_name"`
	DBPath        string `yaml:"db_path"`
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	SessionStore  string `yaml:"session_store"`
	SessionSecret string `yaml:"session_secret"`
	JWTSecret     string `yaml:"jwt_secret"`
	JWTTTLHours   int    `yaml:"jwt_ttl_hours"`
	GinMode       string `yaml:"gin_mode"`
	Port          string `yaml:"port"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	AdminUsername string `yaml:"admin_username"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// Load reads the optional YAML file named by CONFIG_FILE, then applies
// environment variables on top. Unset values get defaults.
func Load() (*Config, error) {
	file := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		file, err = loadFile(path)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		DBDriver:      getEnv("DB_DRIVER", or(file.DBDriver, "mysql")),
		DBHost:        getEnv("DB_HOST", or(file.DBHost, "localhost")),
		DBPort:        getEnv("DB_PORT", or(file.DBPort, "3306")),
		DBUser:        getEnv("DB_USER", or(file.DBUser, "taskuser")),
		DBPassword:    getEnv("DB_PASSWORD", or(file.DBPassword, "taskpassword")),
		DBName:        getEnv("DB_NAME", or(file.DBName, "project_tracker")),
		DBPath:        getEnv("DB_PATH", or(file.DBPath, "project_tracker.db")),
		RedisHost:     getEnv("REDIS_HOST", or(file.RedisHost, "localhost")),
		RedisPort:     getEnv("REDIS_PORT", or(file.RedisPort, "6379")),
		SessionStore:  getEnv("SESSION_STORE", or(file.SessionStore, "redis")),
		SessionSecret: getEnv("SESSION_SECRET", or(file.SessionSecret, "default-secret-key-change-me")),
		JWTSecret:     getEnv("JWT_SECRET", or(file.JWTSecret, "default-jwt-secret-change-me")),
		GinMode:       getEnv("GIN_MODE", or(file.GinMode, "debug")),
		Port:          getEnv("PORT", or(file.Port, "8080")),
		LogLevel:      getEnv("LOG_LEVEL", or(file.LogLevel, "info")),
		LogFormat:     getEnv("LOG_FORMAT", or(file.LogFormat, "text")),
		AdminUsername: getEnv("ADMIN_USERNAME", file.AdminUsername),
		AdminEmail:    getEnv("ADMIN_EMAIL", file.AdminEmail),
		AdminPassword: getEnv("ADMIN_PASSWORD", file.AdminPassword),
	}

	ttl := file.JWTTTLHours
	if ttl <= 0 {
		ttl = 24
	}
	if raw := os.Getenv("JWT_TTL_HOURS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid JWT_TTL_HOURS %q", raw)
		}
		ttl = parsed
	}
	cfg.JWTTTLHours = ttl

	switch cfg.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
