package systems

import (
	"fmt"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/gles"
)

/**
 * @brief Keeps linked program binaries by stage program name so later runs
 * of a pipeline link can skip compiling from source. Safe for concurrent use:
 * the asset watcher evicts entries from its own goroutine.
 */
type MicrocodeCache struct {
	cache  *lru.Cache[string, gles.Microcode]
	logger *log.Logger
}

func NewMicrocodeCache(capacity int, logger *log.Logger) (*MicrocodeCache, error) {
	mc := &MicrocodeCache{logger: logger}
	c, err := lru.NewWithEvict[string, gles.Microcode](capacity, mc.onEvicted)
	if err != nil {
		return nil, fmt.Errorf("microcode cache: %w", err)
	}
	mc.cache = c
	return mc, nil
}

func (mc *MicrocodeCache) onEvicted(name string, m gles.Microcode) {
	mc.logger.Debug("microcode dropped", "program", name, "bytes", len(m.Binary))
}

func (mc *MicrocodeCache) Get(name string) (gles.Microcode, bool) {
	return mc.cache.Get(name)
}

func (mc *MicrocodeCache) Put(name string, m gles.Microcode) {
	mc.cache.Add(name, m)
}

// Evict drops the binary of a program whose source changed on disk.
func (mc *MicrocodeCache) Evict(name string) bool {
	return mc.cache.Remove(name)
}

func (mc *MicrocodeCache) Len() int {
	return mc.cache.Len()
}

func (mc *MicrocodeCache) Purge() {
	mc.cache.Purge()
}
