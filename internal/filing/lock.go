package filing

import "time"

// RunLock is an in-process Locker bounding the daemon to one filing run at
// a time. The lock is advisory: all mutation of the canonical folder
// happens inside this process, so a process-wide mutex is sufficient.
type RunLock struct {
	ch chan struct{}
}

// NewRunLock returns an unlocked RunLock.
func NewRunLock() *RunLock {
	return &RunLock{ch: make(chan struct{}, 1)}
}

// TryAcquire attempts to take the lock, waiting at most timeout. A false
// return means another run holds the lock.
func (l *RunLock) TryAcquire(timeout time.Duration) bool {
	if timeout <= 0 {
		select {
		case l.ch <- struct{}{}:
			return true
		default:
			return false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case l.ch <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

// Release frees the lock. Calling Release without holding the lock panics;
// the coordinator releases via defer after a successful TryAcquire.
func (l *RunLock) Release() {
	select {
	case <-l.ch:
	default:
		panic("filing: Release of unheld RunLock")
	}
}
