package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	MQTT      MQTTConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        int
	RefreshExpiryHours int
}

type MQTTConfig struct {
	Broker               string
	ClientID             string
	Username             string
	Password             string
	QoS                  int
	KeepAlive            int
	ConnectTimeout       int
	MaxReconnectInterval time.Duration

	// Outbound topics toward the ingestion service
	AssignmentTopic   string
	DeviceConfigTopic string

	// Inbound topics from the ingestion service
	DeviceUpdateTopic string
	DeviceEventTopic  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	viper.SetDefault("MQTT_QOS", 1)
	viper.SetDefault("MQTT_KEEP_ALIVE", 60)
	viper.SetDefault("MQTT_CONNECT_TIMEOUT", 10)
	viper.SetDefault("MQTT_MAX_RECONNECT_INTERVAL", "1m")
	viper.SetDefault("MQTT_ASSIGNMENT_TOPIC", "cargo/devices/assignment")
	viper.SetDefault("MQTT_DEVICE_CONFIG_TOPIC", "cargo/devices/config")
	viper.SetDefault("MQTT_DEVICE_UPDATE_TOPIC", "cargo/devices/update")
	viper.SetDefault("MQTT_DEVICE_EVENT_TOPIC", "cargo/devices/event")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        viper.GetInt("JWT_EXPIRY_HOURS"),
			RefreshExpiryHours: viper.GetInt("JWT_REFRESH_EXPIRY_HOURS"),
		},
		MQTT: MQTTConfig{
			Broker:               viper.GetString("MQTT_BROKER"),
			ClientID:             viper.GetString("MQTT_CLIENT_ID"),
			Username:             viper.GetString("MQTT_USERNAME"),
			Password:             viper.GetString("MQTT_PASSWORD"),
			QoS:                  viper.GetInt("MQTT_QOS"),
			KeepAlive:            viper.GetInt("MQTT_KEEP_ALIVE"),
			ConnectTimeout:       viper.GetInt("MQTT_CONNECT_TIMEOUT"),
			MaxReconnectInterval: viper.GetDuration("MQTT_MAX_RECONNECT_INTERVAL"),
			AssignmentTopic:      viper.GetString("MQTT_ASSIGNMENT_TOPIC"),
			DeviceConfigTopic:    viper.GetString("MQTT_DEVICE_CONFIG_TOPIC"),
			DeviceUpdateTopic:    viper.GetString("MQTT_DEVICE_UPDATE_TOPIC"),
			DeviceEventTopic:     viper.GetString("MQTT_DEVICE_EVENT_TOPIC"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
