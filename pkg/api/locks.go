package api

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// viewLocks serializes activation of the same view within this process so
// concurrent layer requests cannot generate two different fields.
type viewLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *viewLocks) lock(viewID string) func() {
	h := fnv.New32a()
	h.Write([]byte(viewID))
	m := &l.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
