package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"eventease/internal/cache"
	"eventease/internal/database"
	"eventease/internal/messaging"

	"github.com/spf13/viper"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port               string
	GinMode            string
	LogLevel           string
	LogFormat          string
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string

	Database database.Config
	NATS     messaging.Config
	Valkey   cache.Config
	Search   SearchConfig
	Client   ClientConfig
}

// SearchConfig выбирает источник ранжирования для полнотекстового поиска
type SearchConfig struct {
	Ranker          string // "postgres" или "elasticsearch"
	ReindexInterval time.Duration
	Elasticsearch   ElasticsearchConfig
}

// ClientConfig используется терминальным клиентом
type ClientConfig struct {
	APIURL         string
	UserID         string
	SearchDebounce time.Duration
	Timeout        time.Duration
}

const (
	RankerPostgres      = "postgres"
	RankerElasticsearch = "elasticsearch"
)

// fileConfig holds values from CONFIG_FILE; environment variables take precedence over it.
var fileConfig *viper.Viper

// Load загружает конфигурацию из переменных окружения и, если задан CONFIG_FILE, из YAML файла
func Load() *Config {
	loadFile(os.Getenv("CONFIG_FILE"))

	return &Config{
		Port:               getEnv("PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "eventease"),
			Password:           getEnv("DB_PASSWORD", "eventease"),
			DBName:             getEnv("DB_NAME", "eventease"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
			RunMigrations:      getEnvBool("DB_RUN_MIGRATIONS", true),
		},

		NATS: messaging.Config{
			Enabled:   getEnvBool("NATS_ENABLED", true),
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "eventease"),
			ClientID:  getEnv("NATS_CLIENT_ID", "eventease-api"),
		},

		Valkey: cache.Config{
			Enabled:   getEnvBool("VALKEY_ENABLED", true),
			Addr:      getEnv("VALKEY_ADDR", "localhost:6379"),
			Password:  getEnv("VALKEY_PASSWORD", ""),
			EventsTTL: time.Duration(getEnvInt("CACHE_EVENTS_TTL_SEC", 30)) * time.Second,
			LockTTL:   time.Duration(getEnvInt("REGISTRATION_LOCK_TTL_SEC", 15)) * time.Second,
		},

		Search: SearchConfig{
			Ranker:          strings.ToLower(getEnv("SEARCH_RANKER", RankerPostgres)),
			ReindexInterval: time.Duration(getEnvInt("SEARCH_REINDEX_INTERVAL_SEC", 300)) * time.Second,
			Elasticsearch:   LoadElasticsearchConfig(),
		},

		Client: ClientConfig{
			APIURL:         getEnv("EVENTEASE_API_URL", "http://localhost:8080"),
			UserID:         getEnv("EVENTEASE_USER_ID", ""),
			SearchDebounce: time.Duration(getEnvInt("SEARCH_DEBOUNCE_MS", 300)) * time.Millisecond,
			Timeout:        time.Duration(getEnvInt("CLIENT_TIMEOUT_SEC", 30)) * time.Second,
		},
	}
}

func loadFile(path string) {
	fileConfig = nil
	if path == "" {
		return
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		slog.Warn("Failed to read config file, using environment only", "path", path, "error", err)
		return
	}

	fileConfig = v
}

// getEnv получает значение переменной окружения, затем из файла конфигурации, иначе значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileConfig != nil && fileConfig.IsSet(strings.ToLower(key)) {
		return fileConfig.GetString(strings.ToLower(key))
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := getEnv(key, ""); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := getEnv(key, ""); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// getEnvDuration accepts Go duration syntax ("5s", "1m30s")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := getEnv(key, ""); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
