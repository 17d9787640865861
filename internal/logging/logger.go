package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger пишет сообщения в консоль и в файл с независимыми порогами уровней.
type Logger struct {
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
	mu              sync.Mutex
}

// Глобальный экземпляр логгера
var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

// NewLogger создаёт логгер компонента с файлом logs/<component>_<время>.log.
func NewLogger(component string) (*Logger, error) {
	if err := os.MkdirAll("logs", 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории logs: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join("logs", fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	return &Logger{
		consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
		fileLogger:      log.New(file, "", log.LstdFlags),
		file:            file,
		minConsoleLevel: INFO,
		minFileLevel:    TRACE,
	}, nil
}

// SetLevels устанавливает минимальные уровни для консоли и файла.
func (l *Logger) SetLevels(console, file LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minConsoleLevel = console
	l.minFileLevel = file
}

// Close закрывает файл логгера
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Log логирует сообщение с указанным уровнем
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	message := fmt.Sprintf("[%s] %s", level.String(), fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLogger != nil && level >= l.minFileLevel {
		l.fileLogger.Println(message)
	}
	if l.consoleLogger != nil && level >= l.minConsoleLevel {
		l.consoleLogger.Println(message)
	}
}

// InitDefaultLogger инициализирует глобальный логгер для компонента.
func InitDefaultLogger(component string) error {
	logger, err := NewLogger(component)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
	return nil
}

// CloseDefaultLogger закрывает глобальный логгер.
func CloseDefaultLogger() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger != nil {
		_ = defaultLogger.Close()
		defaultLogger = nil
	}
}

// Trace логирует сообщение уровня TRACE через глобальный логгер
func Trace(format string, args ...interface{}) { logDefault(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG через глобальный логгер
func Debug(format string, args ...interface{}) { logDefault(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO через глобальный логгер
func Info(format string, args ...interface{}) { logDefault(INFO, format, args...) }

// Warn логирует сообщение уровня WARN через глобальный логгер
func Warn(format string, args ...interface{}) { logDefault(WARN, format, args...) }

// Error логирует сообщение уровня ERROR через глобальный логгер
func Error(format string, args ...interface{}) { logDefault(ERROR, format, args...) }

func logDefault(level LogLevel, format string, args ...interface{}) {
	defaultMu.RLock()
	logger := defaultLogger
	defaultMu.RUnlock()

	if logger == nil {
		return // логирование не инициализировано — молча пропускаем
	}
	logger.Log(level, format, args...)
}
