package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBConfig struct {
		DBHost     string `env:"TASKS_DB_HOST"`
		DBPort     string `env:"TASKS_DB_PORT"`
		DBUser     string `env:"TASKS_DB_USER"`
		DBPassword string `env:"TASKS_DB_PASSWORD"`
		DBName     string `env:"TASKS_DB_NAME"`
		DBSSLMode  string `env:"TASKS_DB_SSLMODE"`
	}

	KafkaURL         string `env:"KAFKA_BROKER_URL"`
	KafkaEventsTopic string `env:"KAFKA_EVENTS_TOPIC"`

	JiraBaseURL       string `env:"JIRA_BASE_URL"`
	JiraEmail         string `env:"JIRA_EMAIL"`
	JiraAPIToken      string `env:"JIRA_API_TOKEN"`
	JiraProjectKey    string `env:"JIRA_PROJECT_KEY"`
	JiraIssueType     string `env:"JIRA_ISSUE_TYPE"`
	JiraWebhookSecret string `env:"JIRA_WEBHOOK_SECRET"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL"`
	OutboxPollTimeout  time.Duration `env:"OUTBOX_POLL_TIMEOUT"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE"`
	OutboxMaxRetries   int           `env:"OUTBOX_MAX_RETRIES"`
	OutboxRetryBackoff time.Duration `env:"OUTBOX_RETRY_BACKOFF"`

	HTTPPort       int    `env:"HTTP_PORT"`
	MigrationsPath string `env:"MIGRATIONS_PATH"`
}

func LoadConfig() (*Config, error) {
	// A missing .env is fine, real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.DBConfig.DBHost = getEnvOrDefault("TASKS_DB_HOST", "localhost")
	cfg.DBConfig.DBPort = getEnvOrDefault("TASKS_DB_PORT", "5432")
	cfg.DBConfig.DBUser = getEnvOrDefault("TASKS_DB_USER", "postgres")
	cfg.DBConfig.DBPassword = getEnvOrDefault("TASKS_DB_PASSWORD", "postgres")
	cfg.DBConfig.DBName = getEnvOrDefault("TASKS_DB_NAME", "tasks_db")
	cfg.DBConfig.DBSSLMode = getEnvOrDefault("TASKS_DB_SSLMODE", "disable")

	cfg.KafkaURL = getEnvOrDefault("KAFKA_BROKER_URL", "localhost:9092")
	cfg.KafkaEventsTopic = getEnvOrDefault("KAFKA_EVENTS_TOPIC", "jira-events")

	cfg.JiraBaseURL = getEnvOrDefault("JIRA_BASE_URL", "")
	cfg.JiraEmail = getEnvOrDefault("JIRA_EMAIL", "")
	cfg.JiraAPIToken = getEnvOrDefault("JIRA_API_TOKEN", "")
	cfg.JiraProjectKey = getEnvOrDefault("JIRA_PROJECT_KEY", "")
	cfg.JiraIssueType = getEnvOrDefault("JIRA_ISSUE_TYPE", "Task")
	cfg.JiraWebhookSecret = getEnvOrDefault("JIRA_WEBHOOK_SECRET", "")

	var err error
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", "5s"); err != nil {
		return nil, err
	}
	if cfg.OutboxPollTimeout, err = parseDurationEnv("OUTBOX_POLL_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.OutboxRetryBackoff, err = parseDurationEnv("OUTBOX_RETRY_BACKOFF", "30s"); err != nil {
		return nil, err
	}
	if cfg.OutboxBatchSize, err = parseIntEnv("OUTBOX_BATCH_SIZE", "10"); err != nil {
		return nil, err
	}
	if cfg.OutboxMaxRetries, err = parseIntEnv("OUTBOX_MAX_RETRIES", "5"); err != nil {
		return nil, err
	}
	if cfg.HTTPPort, err = parseIntEnv("HTTP_PORT", "8080"); err != nil {
		return nil, err
	}

	cfg.MigrationsPath = getEnvOrDefault("MIGRATIONS_PATH", "file://migrations")

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key, defaultValue string) (time.Duration, error) {
	raw := getEnvOrDefault(key, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key, defaultValue string) (int, error) {
	raw := getEnvOrDefault(key, defaultValue)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBConfig.DBHost, c.DBConfig.DBPort, c.DBConfig.DBUser, c.DBConfig.DBPassword, c.DBConfig.DBName, c.DBConfig.DBSSLMode)
}

func (c *Config) GetDBMigrationConnectionString() string {
	return fmt.Sprintf("%s:%s@%s:%s/%s?sslmode=%s",
		c.DBConfig.DBUser, c.DBConfig.DBPassword, c.DBConfig.DBHost, c.DBConfig.DBPort, c.DBConfig.DBName, c.DBConfig.DBSSLMode)
}

func (c *Config) GetKafkaBrokers() []string {
	return []string{c.KafkaURL}
}
