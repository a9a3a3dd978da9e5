// Package config provides configuration management for the bot.
// Values come from an optional YAML file (CONFIG_PATH, default config.yaml),
// then from the environment (.env is loaded first), environment winning.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendFile  = "file"
	BackendBolt  = "bolt"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string `yaml:"botToken"`
	DevGuildID string `yaml:"devGuildId"`

	// Guild config store
	StoreBackend string `yaml:"storeBackend"`
	DataPath     string `yaml:"dataPath"`
	BoltPath     string `yaml:"boltPath"`

	// Redis
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDb"`
	RedisKey      string `yaml:"redisKey"`

	// MongoDB
	MongoDBURL string `yaml:"mongodbUrl"`
	DBName     string `yaml:"dbName"`

	// MQTT
	MQTTEnabled  bool   `yaml:"mqttEnabled"`
	MQTTHost     string `yaml:"mqttHost"`
	MQTTPort     string `yaml:"mqttPort"`
	MQTTUser     string `yaml:"mqttUser"`
	MQTTPassword string `yaml:"mqttPassword"`

	// Web Server
	Port                  string `yaml:"port"`
	DashboardSecret       string `yaml:"dashboardSecret"`
	DashboardAllowedHosts string `yaml:"dashboardAllowedHosts"`

	// Environment
	Environment string `yaml:"environment"`
	LogDir      string `yaml:"logDir"`

	// Webhooks
	ErrorWebhook      string `yaml:"errorWebhook"`
	LogsWebhook       string `yaml:"logsWebhook"`
	LogsWebServerHook string `yaml:"logsWebServerWebhook"`

	// Remove a guild's document when the bot is removed from it.
	PurgeOnGuildLeave bool `yaml:"purgeOnGuildLeave"`
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgErr  error
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgErr = nil
	cfgOnce = sync.Once{}
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		StoreBackend: BackendFile,
		DataPath:     "data/guild-configs.json",
		BoltPath:     "data/guild-configs.db",
		RedisAddr:    "localhost:6379",
		RedisKey:     "pancyguard:guild-configs",
		MongoDBURL:   "mongodb://localhost:27017",
		DBName:       "PancyGuard",
		MQTTHost:     "localhost",
		MQTTPort:     "1883",
		Port:         "3000",
		Environment:  "dev",
		LogDir:       "logs",
	}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	c := Defaults()
	if err := loadFile(&c, getEnv("CONFIG_PATH", "config.yaml")); err != nil {
		cfgErr = err
	}
	applyEnv(&c)

	if err := c.Validate(); err != nil && cfgErr == nil {
		cfgErr = err
	}
	cfg = &c
}

// loadFile overlays the YAML file at path. A missing file is not an error.
func loadFile(c *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *Config) {
	// Discord
	c.BotToken = getEnv("botToken", c.BotToken)
	c.DevGuildID = getEnv("devGuildId", c.DevGuildID)

	// Store
	c.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", c.StoreBackend))
	c.DataPath = getEnv("DATA_PATH", c.DataPath)
	c.BoltPath = getEnv("BOLT_PATH", c.BoltPath)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisKey = getEnv("REDIS_KEY", c.RedisKey)

	// MongoDB
	c.MongoDBURL = getEnv("mongodbUrl", c.MongoDBURL)
	c.DBName = getEnv("dbName", c.DBName)

	// MQTT
	c.MQTTEnabled = getEnvBool("MQTT_Enabled", c.MQTTEnabled)
	c.MQTTHost = getEnv("MQTT_Host", c.MQTTHost)
	c.MQTTPort = getEnv("MQTT_Port", c.MQTTPort)
	c.MQTTUser = getEnv("MQTT_User", c.MQTTUser)
	c.MQTTPassword = getEnv("MQTT_Password", c.MQTTPassword)

	// Web Server
	c.Port = getEnv("PORT", c.Port)
	c.DashboardSecret = getEnv("DASHBOARD_SECRET", c.DashboardSecret)
	c.DashboardAllowedHosts = getEnv("DASHBOARD_ALLOWED_HOSTS", c.DashboardAllowedHosts)

	// Environment
	c.Environment = getEnv("enviroment", c.Environment)
	c.LogDir = getEnv("LOG_DIR", c.LogDir)

	// Webhooks
	c.ErrorWebhook = getEnv("errorWebhook", c.ErrorWebhook)
	c.LogsWebhook = getEnv("logsWebhook", c.LogsWebhook)
	c.LogsWebServerHook = getEnv("logsWebServerWebhook", c.LogsWebServerHook)

	c.PurgeOnGuildLeave = getEnvBool("PURGE_ON_GUILD_LEAVE", c.PurgeOnGuildLeave)
}

// Load initializes the configuration. The returned error reports an unreadable
// YAML file or an unknown store backend; the config is still usable.
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, cfgErr
}

// Get returns the current configuration
func Get() *Config {
	// Use sync.Once to ensure thread-safe initialization if Load wasn't called
	cfgOnce.Do(loadConfig)
	return cfg
}

// Validate checks values that would make the bot fail later in a confusing way.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendFile, BackendBolt, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}
