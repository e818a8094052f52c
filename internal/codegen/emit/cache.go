// Package emit holds the pieces shared by the architecture generators:
// the per-run component cache and the sequential output file writer.
package emit

import (
	"log/slog"

	"golang.org/x/crypto/blake2b"
)

// RunCache remembers which component definition files were already written
// during one generation run, so peripherals shared across targets are
// emitted once. It is owned by the run context, not by any generator
// object; independent runs get fresh caches.
type RunCache struct {
	logger  *slog.Logger
	emitted map[string][blake2b.Size256]byte
}

// NewRunCache returns an empty cache for one generation run.
func NewRunCache(logger *slog.Logger) *RunCache {
	return &RunCache{
		logger:  logger,
		emitted: make(map[string][blake2b.Size256]byte),
	}
}

// SeenComponent records the rendered content for a peripheral/id pair and
// reports whether an identical file was already written this run. A repeat
// key with different content is logged and still skipped; the first
// emission wins, matching the per-run dedup of the original header sets.
func (c *RunCache) SeenComponent(key string, content []byte) bool {
	sum := blake2b.Sum256(content)
	prev, ok := c.emitted[key]
	if !ok {
		c.emitted[key] = sum
		return false
	}
	if prev != sum && c.logger != nil {
		c.logger.Warn("component content differs from earlier emission, keeping first", "component", key)
	}
	return true
}

// Len reports how many distinct components were emitted.
func (c *RunCache) Len() int { return len(c.emitted) }
