package localtransport

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"sync"
)

// chainMutex is a mutex that the goroutine already holding it may lock
// again without blocking, while a different goroutine still blocks until
// it is fully released. Network needs this instead of a plain
// sync.Mutex because one peer's ProcessData call routinely cascades,
// still synchronously on the same goroutine, into Broadcast/Send calls
// that dispatch to other peers and sometimes back to a peer earlier in
// the same call chain (the shuffle ring wraps back to peer 0). A plain
// mutex would deadlock a goroutine against itself there; scoping
// exclusivity to the owning goroutine does not.
type chainMutex struct {
	sem chan struct{}

	mu    sync.Mutex
	owner int64
	depth int
}

func newChainMutex() *chainMutex {
	return &chainMutex{sem: make(chan struct{}, 1)}
}

// Lock blocks only if another goroutine currently holds the lock.
func (c *chainMutex) Lock() {
	gid := goroutineID()

	c.mu.Lock()
	if c.depth > 0 && c.owner == gid {
		c.depth++
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.sem <- struct{}{}

	c.mu.Lock()
	c.owner = gid
	c.depth = 1
	c.mu.Unlock()
}

// Unlock releases one level of recursion, releasing the lock to other
// goroutines once the owning goroutine's outermost Lock call unwinds.
func (c *chainMutex) Unlock() {
	c.mu.Lock()
	c.depth--
	done := c.depth == 0
	c.mu.Unlock()

	if done {
		<-c.sem
	}
}

// goroutineID extracts the calling goroutine's id from its own stack
// trace header ("goroutine 123 [running]:..."). There is no exported way
// to get this from runtime, and chainMutex has no correctness without it.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		panic(fmt.Sprintf("localtransport: unexpected goroutine stack header %q", buf[:n]))
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		panic(fmt.Sprintf("localtransport: cannot parse goroutine id from %q: %v", fields[1], err))
	}
	return id
}
