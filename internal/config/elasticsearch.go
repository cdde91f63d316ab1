package config

import (
	"time"
)

// ElasticsearchConfig содержит конфигурацию ранжирования через Elasticsearch
type ElasticsearchConfig struct {
	Addresses  []string
	Index      string
	Username   string
	Password   string
	MaxRetries int
	Timeout    time.Duration
}

// LoadElasticsearchConfig читает ELASTICSEARCH_*; ELASTICSEARCH_URL может содержать несколько узлов через запятую
func LoadElasticsearchConfig() ElasticsearchConfig {
	return ElasticsearchConfig{
		Addresses:  getEnvList("ELASTICSEARCH_URL", []string{"http://localhost:9200"}),
		Index:      getEnv("ELASTICSEARCH_INDEX", "eventease-events"),
		Username:   getEnv("ELASTICSEARCH_USERNAME", ""),
		Password:   getEnv("ELASTICSEARCH_PASSWORD", ""),
		MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
		Timeout:    getEnvDuration("ELASTICSEARCH_TIMEOUT", 30*time.Second),
	}
}
