package rng

import (
	"math/rand"
	"sync"
	"time"
)

// Source provides random number generation that can be faked for
// testing.
type Source interface {
	// Intn returns a random int in [0, n).
	Intn(n int) int
}

// lockedRand wraps math/rand with a mutex so sessions on different
// goroutines can share one source.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New creates a time-seeded Source.
func New() Source {
	return &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// Fake is a deterministic Source that replays a fixed sequence,
// wrapping around when exhausted. Values are reduced mod n.
type Fake struct {
	Seq []int
	pos int
}

func (f *Fake) Intn(n int) int {
	if len(f.Seq) == 0 || n <= 0 {
		return 0
	}
	v := f.Seq[f.pos%len(f.Seq)]
	f.pos++
	return v % n
}
