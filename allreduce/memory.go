package allreduce

import (
	"context"
	"sync"
)

// MemoryGroup connects a fixed number of in-process workers. Each worker
// takes one MemoryCommunicator; AllGather blocks until all members of the
// round have contributed.
type MemoryGroup struct {
	mu   sync.Mutex
	size int
	cur  *memoryRound
}

type memoryRound struct {
	payloads [][]byte
	pending  int
	done     chan struct{}
}

// NewMemoryGroup creates a group of size communicators sharing one barrier.
func NewMemoryGroup(size int) []*MemoryCommunicator {
	g := &MemoryGroup{size: size}

	comms := make([]*MemoryCommunicator, size)
	for i := range comms {
		comms[i] = &MemoryCommunicator{group: g, rank: i}
	}
	return comms
}

// MemoryCommunicator is one worker's endpoint in a MemoryGroup.
type MemoryCommunicator struct {
	group *MemoryGroup
	rank  int
}

// Rank returns this worker's index in the group.
func (c *MemoryCommunicator) Rank() int {
	return c.rank
}

// WorldSize returns the group size.
func (c *MemoryCommunicator) WorldSize() int {
	return c.group.size
}

// AllGather deposits the local payload and blocks until every member of the
// group has deposited, then returns all payloads ordered by rank. The
// returned slices are shared between members and must be treated read-only.
func (c *MemoryCommunicator) AllGather(ctx context.Context, payload []byte) ([][]byte, error) {
	g := c.group

	g.mu.Lock()
	if g.cur == nil {
		g.cur = &memoryRound{
			payloads: make([][]byte, g.size),
			pending:  g.size,
			done:     make(chan struct{}),
		}
	}
	r := g.cur

	buf := make([]byte, len(payload))
	copy(buf, payload)
	r.payloads[c.rank] = buf

	r.pending--
	if r.pending == 0 {
		close(r.done)
		g.cur = nil
	}
	g.mu.Unlock()

	select {
	case <-r.done:
		return r.payloads, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
