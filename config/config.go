// config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server    ServerConfiguration
	API       APIConfiguration
	Cache     CacheConfiguration
	Logger    LoggerConfiguration
	Redis     RedisConfiguration
	RateLimit RateLimitConfiguration
}

// ServerConfiguration stores the port and other settings for the inspector server
type ServerConfiguration struct {
	Port string
}

// APIConfiguration stores the remote admin API settings
type APIConfiguration struct {
	BaseURL  string
	StoreID  string
	BranchID string
}

// CacheConfiguration stores the response cache settings
type CacheConfiguration struct {
	DefaultTTL string
	Backend    string // "memory" or "redis"
}

// LoggerConfiguration stores the call logger defaults
type LoggerConfiguration struct {
	Enabled       bool
	MinLevel      string
	EchoToConsole bool
	MaxSizeMB     int
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr            string
	DefaultCacheTTL string
}

// RateLimitConfiguration stores the inspector throttle settings
type RateLimitConfiguration struct {
	RequestsPerMinute int
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("api.baseURL", "http://localhost:9000")
	viper.SetDefault("api.storeID", "")
	viper.SetDefault("api.branchID", "")
	viper.SetDefault("cache.defaultTTL", "5m")
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("logger.enabled", true)
	viper.SetDefault("logger.minLevel", "debug")
	viper.SetDefault("logger.echoToConsole", true)
	viper.SetDefault("logger.maxSizeMB", 5)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.defaultCacheTTL", "5m")
	viper.SetDefault("ratelimit.requestsPerMinute", 100)
	viper.SetDefault("log.dir", "logging")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
