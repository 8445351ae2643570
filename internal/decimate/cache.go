package decimate

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"

	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

// maxCacheEntries bounds the memo; a session only ever needs the entries for
// its recent configurations, so the cache resets wholesale when it fills.
const maxCacheEntries = 64

// Cache memoizes decimation output keyed by Key. It is safe for concurrent
// use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]domain.DecimatedPoint
	hits    uint64
	misses  uint64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]domain.DecimatedPoint)}
}

// Get returns the memoized points for key, if present.
func (c *Cache) Get(key string) ([]domain.DecimatedPoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	points, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return points, ok
}

// Put stores points under key.
func (c *Cache) Put(key string, points []domain.DecimatedPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= maxCacheEntries {
		c.entries = make(map[string][]domain.DecimatedPoint)
	}
	c.entries[key] = points
}

// Stats returns cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Key digests the full decimation input — record values, configuration, and
// the effective depth range — so any change to any of the three invalidates
// the memo. Inert configuration flags are included: they are part of the
// declared input even though the engine ignores them today.
func Key(records []domain.DrillingRecord, cfg domain.DecimationConfig, active *domain.DepthRange) string {
	h := sha256.New()
	buf := make([]byte, 8)

	writeFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		h.Write(buf)
	}

	for _, rec := range records {
		writeFloat(rec.Depth)
		writeFloat(rec.WOB)
		writeFloat(rec.RPM)
		writeFloat(rec.ROP)
	}

	h.Write([]byte(cfg.Strategy))
	writeFloat(cfg.DepthInterval)
	binary.LittleEndian.PutUint64(buf, uint64(cfg.BinCount))
	h.Write(buf)
	h.Write([]byte(cfg.FilterMode))
	h.Write([]byte(cfg.SelectedRangeID))
	h.Write([]byte{flag(cfg.EnableSmoothing), flag(cfg.OutlierRemoval)})

	if active != nil {
		h.Write([]byte(active.ID))
		writeFloat(active.StartDepth)
		writeFloat(active.EndDepth)
	}

	return hex.EncodeToString(h.Sum(nil))
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}
