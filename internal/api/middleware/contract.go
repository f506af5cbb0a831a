package middleware

import "time"

// HTTPMetrics сбор метрик HTTP запросов
type HTTPMetrics interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
