// Package memkv provides a volatile in-memory storage tier. It plays the role
// of the per-tab tier: fast, always available, lost on process exit.
package memkv

import (
	"sync"

	"github.com/ridebook/go-ride-client/storage"
)

var _ storage.Tier = (*Tier)(nil)

type Tier struct {
	lock   sync.RWMutex
	values map[string]string
}

func New() *Tier {
	return &Tier{values: make(map[string]string)}
}

func (t *Tier) Get(key string) (string, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	v, ok := t.values[key]
	return v, ok
}

func (t *Tier) Set(key, value string) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.values[key] = value
}

func (t *Tier) Delete(key string) {
	t.lock.Lock()
	defer t.lock.Unlock()

	delete(t.values, key)
}
