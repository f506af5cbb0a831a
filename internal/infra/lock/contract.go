package lock

import "context"

// Unlock освобождает захваченную блокировку. Повторный вызов безопасен.
type Unlock = func()

// Locker взаимное исключение по ключу (например, "boat:<id>")
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
