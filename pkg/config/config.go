package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Collect   CollectConfig
	Analyzer  AnalyzerConfig
	Dashboard DashboardConfig
	CORS      CORSConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host              string
	Port              int
	ReadTimeout       int
	WriteTimeout      int
	BodyLimit         int
	RequestsPerMinute int
}

type DatabaseConfig struct {
	Driver   string // "postgres" or "sqlite3"
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // sqlite3 only
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTLSec   int
}

type LLMConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type CollectConfig struct {
	IntervalMinutes int
	MaxPerSource    int
	Keywords        []string
	Tag             string
	YouTubeAPIKey   string
	GitHubToken     string
}

type AnalyzerConfig struct {
	URL              string
	Port             int
	PendingThreshold int
	PendingBatch     int
}

type DashboardConfig struct {
	APIURL       string
	Port         int
	TemplatePath string
}

type CORSConfig struct {
	Origins string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

// DSN builds the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite3" {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/community-pulse")

	viper.SetEnvPrefix("PULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 4194304)
	viper.SetDefault("server.requestsPerMinute", 120)

	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "pulse_app")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.name", "community_pulse")
	viper.SetDefault("database.sslMode", "disable")
	viper.SetDefault("database.path", "./data/pulse.db")

	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 60)

	viper.SetDefault("llm.model", "gpt-3.5-turbo")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.maxTokens", 150)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("collect.intervalMinutes", 30)
	viper.SetDefault("collect.maxPerSource", 20)
	viper.SetDefault("collect.keywords", []string{"PyCon", "PyCon 2025", "PyCon US"})
	viper.SetDefault("collect.tag", "pycon")

	viper.SetDefault("analyzer.url", "http://localhost:8001")
	viper.SetDefault("analyzer.port", 8001)
	viper.SetDefault("analyzer.pendingThreshold", 10)
	viper.SetDefault("analyzer.pendingBatch", 20)

	viper.SetDefault("dashboard.apiUrl", "http://localhost:8000")
	viper.SetDefault("dashboard.port", 8050)
	viper.SetDefault("dashboard.templatePath", "./web/templates/dashboard.html")

	viper.SetDefault("cors.origins", "http://localhost:3000,http://localhost:8000")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
