package ai

import (
	"fmt"
	"sync"

	"tutor-rag-platform/internal/logger"
)

// KeyRotator cycles through API credentials round-robin. Both the read of
// the current key and the advance are short mutex-held critical sections so
// it can be shared across all in-process callers. Key values are never
// logged, only indices.
type KeyRotator struct {
	mu    sync.Mutex
	keys  []string
	index int
	name  string
}

func NewKeyRotator(keys []string, name string) (*KeyRotator, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%s: at least one API key is required", name)
	}
	logger.Info("key rotator initialized", "name", name, "keys", len(keys))
	return &KeyRotator{keys: keys, name: name}, nil
}

// Current returns the key at the current index without advancing.
func (r *KeyRotator) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[r.index]
}

// Next advances to the next key (wrapping around) and returns it.
func (r *KeyRotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.index
	r.index = (r.index + 1) % len(r.keys)
	logger.Debug("rotated API key", "name", r.name, "from", old, "to", r.index)
	return r.keys[r.index]
}

func (r *KeyRotator) Count() int {
	return len(r.keys)
}
