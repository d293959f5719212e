package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	RegisterTTL int // in minutes
	LoginTTL    int // in days
}

type StorageConfig struct {
	NATSURL       string
	Bucket        string
	PublicBaseURL string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_REGISTER_TTL", 60)
	viper.SetDefault("JWT_LOGIN_TTL", 7)
	viper.SetDefault("STORAGE_NATS_URL", "nats://localhost:4222")
	viper.SetDefault("STORAGE_BUCKET", "images")
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			RegisterTTL: viper.GetInt("JWT_REGISTER_TTL"),
			LoginTTL:    viper.GetInt("JWT_LOGIN_TTL"),
		},
		Storage: StorageConfig{
			NATSURL:       viper.GetString("STORAGE_NATS_URL"),
			Bucket:        viper.GetString("STORAGE_BUCKET"),
			PublicBaseURL: viper.GetString("STORAGE_PUBLIC_URL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitOrigins(viper.GetString("FRONTEND_URL")),
		},
	}
}

// splitOrigins parses a comma-separated origin list from the environment.
func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
