package config

import (
	"os"
	"strconv"
	"strings"
)

// Config содержит все настройки Notification Service
type Config struct {
	Server       ServerConfig
	MongoDB      MongoDBConfig
	Kafka        KafkaConfig
	SMTP         SMTPConfig
	CronSchedule CronScheduleConfig
	Retry        RetryConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт для health check и метрик
}

type MongoDBConfig struct {
	URI      string // URI подключения к MongoDB
	Database string // Имя базы данных
}

// KafkaConfig - настройки Kafka для подписки на события уведомлений
type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик для прослушивания (notification_events)
	GroupID string   // ID группы потребителей для распределения нагрузки
}

// SMTPConfig - настройки SMTP-релея для отправки писем
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // Адрес отправителя
}

// CronScheduleConfig - настройки расписания cron задач
type CronScheduleConfig struct {
	RetryPending string // Расписание повторной отправки pending писем
}

// RetryConfig - лимиты повторной отправки писем
type RetryConfig struct {
	MaxAttempts int // Максимум попыток отправки, дальше письмо получает статус failed
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8084"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "notification_service"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "notification_events"),
			GroupID: getEnv("KAFKA_GROUP_ID", "notification-service-group"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "noreply@bookstore.local"),
		},
		CronSchedule: CronScheduleConfig{
			// По умолчанию повторяем отправку каждые 5 минут
			RetryPending: getEnv("CRON_RETRY_PENDING", "*/5 * * * *"),
		},
		Retry: RetryConfig{
			MaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 5),
		},
	}, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
