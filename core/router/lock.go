package router

import (
	"log"
	"runtime"
)

const lockStateUnlocked = 0
const lockStateLocked = 1

// EntryLock rejects nested top-level invocations. Execution of one call is
// single-threaded (the node serializes top-level calls), so a plain state
// flag is enough; a script re-entering the router hits the LOCKED state on
// the same goroutine.
type EntryLock struct {
	state int
	Trace bool
}

func (l *EntryLock) Acquire() error {
	if l.state == lockStateLocked {
		return ErrReentrantCall
	}
	l.state = lockStateLocked
	if l.Trace {
		_, file, no, ok := runtime.Caller(1)
		log.Printf("entry lock acquire: %s %d %v", file, no, ok)
	}
	return nil
}

func (l *EntryLock) Release() {
	if l.Trace {
		_, file, no, ok := runtime.Caller(1)
		log.Printf("entry lock release: %s %d %v", file, no, ok)
	}
	l.state = lockStateUnlocked
}
