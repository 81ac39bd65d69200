package dispatch

import "sync"

// lockTable сериализует конвейер по ключу пользователя. Запись со счётчиком
// держателей удаляется, как только последний отпускает мьютекс, поэтому
// таблица не растёт с числом когда-либо встреченных пользователей.
type lockTable struct {
	mu	sync.Mutex
	locks	map[string]*userLock
}

type userLock struct {
	mu	sync.Mutex
	refs	int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*userLock)}
}

func (t *lockTable) acquire(key string) *userLock {
	t.mu.Lock()
	l, ok := t.locks[key]
	if !ok {
		l = &userLock{}
		t.locks[key] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
	return l
}

func (t *lockTable) release(key string, l *userLock) {
	l.mu.Unlock()

	t.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(t.locks, key)
	}
	t.mu.Unlock()
}

func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
