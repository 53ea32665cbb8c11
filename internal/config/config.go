package config

import (
	"flag"
	"os"
	"time"
)

// Config содержит конфигурацию обоих бинарников.
// orderdesk использует APIURL и HTTPTimeout, ordersd — RunAddress и DatabaseURI.
type Config struct {
	APIURL      string
	RunAddress  string
	DatabaseURI string
	HTTPTimeout time.Duration
}

// Load загружает конфигурацию из флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
func Load() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.APIURL, "api", "http://localhost:8080", "базовый URL REST-бэкенда")
	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "адрес и порт запуска бэкенда")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL (пусто — хранение в памяти)")
	flag.DurationVar(&cfg.HTTPTimeout, "t", 5*time.Second, "таймаут HTTP-запросов к бэкенду")
	flag.Parse()

	if envAPIURL := os.Getenv("API_URL"); envAPIURL != "" {
		cfg.APIURL = envAPIURL
	}
	if envRunAddr := os.Getenv("RUN_ADDRESS"); envRunAddr != "" {
		cfg.RunAddress = envRunAddr
	}
	if envDBURI := os.Getenv("DATABASE_URI"); envDBURI != "" {
		cfg.DatabaseURI = envDBURI
	}
	if envTimeout := os.Getenv("HTTP_TIMEOUT"); envTimeout != "" {
		if d, err := time.ParseDuration(envTimeout); err == nil {
			cfg.HTTPTimeout = d
		}
	}

	return cfg
}
