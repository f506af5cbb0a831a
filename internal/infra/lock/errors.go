package lock

import "errors"

var (
	// ErrLockTimeout возвращается, когда блокировку не удалось захватить за отведённое время
	ErrLockTimeout = errors.New("lock: timeout acquiring lock")

	// ErrLockBackend возвращается при ошибке хранилища блокировок
	ErrLockBackend = errors.New("lock: backend error")
)
