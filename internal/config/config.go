package config

import (
	"io/ioutil"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.

type Config struct {
	Worker   WorkerConfig   `yaml:"worker"`
	Bake     BakeConfig     `yaml:"bake"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Server   ServerConfig   `yaml:"server"`
	EventBus EventBusConfig `yaml:"eventbus"`
	Sync     SyncConfig     `yaml:"sync"`
}

// WorkerConfig настраивает воркер воксельного мира.
type WorkerConfig struct {
	CommandBuffer int `yaml:"command_buffer"` // Ёмкость канала команд
	EventBuffer   int `yaml:"event_buffer"`   // Ёмкость канала событий
}

// BakeConfig настраивает планировщик перестроек оболочки.
type BakeConfig struct {
	FullIntervalSeconds float64 `yaml:"full_interval_seconds"` // Период полной консолидации
	DirtyMargin         float64 `yaml:"dirty_margin"`          // Запас вокруг грязного вокселя
}

// PhysicsConfig настраивает физику отсоединённых кластеров.
type PhysicsConfig struct {
	Gravity        float64 `yaml:"gravity"`         // Ускорение свободного падения
	SettleCeiling  float64 `yaml:"settle_ceiling"`  // Максимальный возраст кластера (сек)
	InitialLiftVel float64 `yaml:"initial_lift"`    // Начальная вертикальная скорость
}

type ServerConfig struct {
	MetricsPort int `yaml:"metrics_port"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type SyncConfig struct {
	BatchSize    int  `yaml:"batch_size"`
	FlushEvery   int  `yaml:"flush_every_ms"`
	UseZstdCompr bool `yaml:"use_zstd_compression"`
}

// GetCommandBuffer возвращает ёмкость канала команд с fallback значением
func (w *WorkerConfig) GetCommandBuffer() int {
	if w.CommandBuffer > 0 {
		return w.CommandBuffer
	}
	return 4096
}

// GetEventBuffer возвращает ёмкость канала событий с fallback значением
func (w *WorkerConfig) GetEventBuffer() int {
	if w.EventBuffer > 0 {
		return w.EventBuffer
	}
	return 4096
}

// GetFullInterval возвращает период полной консолидации с fallback значением
func (b *BakeConfig) GetFullInterval() float64 {
	if b.FullIntervalSeconds > 0 {
		return b.FullIntervalSeconds
	}
	return 10.0
}

// GetDirtyMargin возвращает запас грязной области с fallback значением
func (b *BakeConfig) GetDirtyMargin() float64 {
	if b.DirtyMargin > 0 {
		return b.DirtyMargin
	}
	return 0.05
}

// GetGravity возвращает ускорение свободного падения с fallback значением
func (p *PhysicsConfig) GetGravity() float64 {
	if p.Gravity > 0 {
		return p.Gravity
	}
	return 9.81
}

// GetSettleCeiling возвращает предел возраста кластера с fallback значением
func (p *PhysicsConfig) GetSettleCeiling() float64 {
	if p.SettleCeiling > 0 {
		return p.SettleCeiling
	}
	return 3.5
}

// GetInitialLift возвращает начальную вертикальную скорость кластера
func (p *PhysicsConfig) GetInitialLift() float64 {
	if p.InitialLiftVel > 0 {
		return p.InitialLiftVel
	}
	return 1.5
}

// GetBatchSize возвращает ёмкость буфера батчей с fallback значением
func (s *SyncConfig) GetBatchSize() int {
	if s.BatchSize > 0 {
		return s.BatchSize
	}
	return 256
}

// GetFlushEveryMs возвращает интервал отправки батчей в миллисекундах
func (s *SyncConfig) GetFlushEveryMs() int {
	if s.FlushEvery > 0 {
		return s.FlushEvery
	}
	return 100
}

// GetStream возвращает имя JetStream стрима с fallback значением
func (e *EventBusConfig) GetStream() string {
	if e.Stream != "" {
		return e.Stream
	}
	return "VOXEL_EVENTS"
}

// GetRetentionHours возвращает срок хранения событий в часах
func (e *EventBusConfig) GetRetentionHours() int {
	if e.Retention > 0 {
		return e.Retention
	}
	return 24
}

// GetMetricsPort возвращает порт Prometheus метрик с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "VOXEL_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV VOXEL_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
