package lock

import (
	"context"
	"sync"
)

type keyedEntry struct {
	sem  chan struct{}
	refs int
}

// LocalLocker блокировка внутри процесса: по одному мьютексу на ключ.
// Записи удаляются, когда ключ никем не удерживается и никто его не ждёт.
type LocalLocker struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

// NewLocalLocker создает блокировку внутри процесса
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{entries: make(map[string]*keyedEntry)}
}

// Lock ждёт освобождения ключа или отмены контекста
func (l *LocalLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	e := l.acquireEntry(key)

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.releaseEntry(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.releaseEntry(key, e)
		})
	}, nil
}

func (l *LocalLocker) acquireEntry(key string) *keyedEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &keyedEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *LocalLocker) releaseEntry(key string, e *keyedEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// size возвращает число отслеживаемых ключей
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
