package naming

import "sync"

// PathLocks serializes work on the same output path across workers. Two
// sources such as "clip.mov" and "clip.avi" in one directory map to the
// same "clip.<fmt>" outputs; holding the lock keeps their
// transcode/backup/move sequences from interleaving. All methods are
// goroutine-safe.
type PathLocks struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

// NewPathLocks creates a ready-to-use lock table.
func NewPathLocks() *PathLocks {
	return &PathLocks{locks: make(map[string]*pathLock)}
}

// Lock blocks until path is free and returns the matching unlock func.
// Entries are dropped once no goroutine holds or waits for them.
func (pl *PathLocks) Lock(path string) (unlock func()) {
	pl.mu.Lock()
	l, ok := pl.locks[path]
	if !ok {
		l = &pathLock{}
		pl.locks[path] = l
	}
	l.refs++
	pl.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		pl.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(pl.locks, path)
		}
		pl.mu.Unlock()
	}
}

// Len reports how many paths are currently held or awaited.
func (pl *PathLocks) Len() int {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return len(pl.locks)
}
