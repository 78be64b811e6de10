//go:build json4web_deadlock

package sync

import (
	"sync"

	"github.com/sasha-s/go-deadlock"
)

type (
	Mutex   = deadlock.Mutex
	RWMutex = deadlock.RWMutex

	// go-deadlock instruments mutexes only; the rest is the standard
	// type under either build tag.
	Once      = sync.Once
	WaitGroup = sync.WaitGroup
	Locker    = sync.Locker
	Map       = sync.Map
	Cond      = sync.Cond
	Pool      = sync.Pool
)
