package cache

import (
	"crypto/md5"
	"fmt"
	"sync"
	"time"

	"github.com/tristendillon/modelsync/core/logger"
)

// ContentEntry is the hash of the content last read from or written to a file.
type ContentEntry struct {
	FilePath    string    `json:"file_path"`
	ContentHash string    `json:"content_hash"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type CacheStats struct {
	TotalFiles  int       `json:"total_files"`
	CacheHits   int64     `json:"cache_hits"`
	CacheMisses int64     `json:"cache_misses"`
	HitRate     float64   `json:"hit_rate"`
	LastUpdate  time.Time `json:"last_update"`
}

// ContentCache tracks the content hash of generated files. Entries are only
// as fresh as the last Record: callers record what they just read from disk,
// never what they assume is there.
type ContentCache struct {
	entries map[string]*ContentEntry
	mutex   sync.RWMutex
	stats   struct {
		hits   int64
		misses int64
	}
}

func NewContentCache() *ContentCache {
	return &ContentCache{
		entries: make(map[string]*ContentEntry),
	}
}

// Matches reports whether content hashes the same as the last recorded
// content of filePath.
func (cc *ContentCache) Matches(filePath string, content []byte) bool {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	existing, exists := cc.entries[filePath]
	if !exists || HashContent(content) != existing.ContentHash {
		cc.stats.misses++
		return false
	}

	logger.Debug("ContentCache: unchanged %s", filePath)
	cc.stats.hits++
	return true
}

func (cc *ContentCache) Record(filePath string, content []byte) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	cc.entries[filePath] = &ContentEntry{
		FilePath:    filePath,
		ContentHash: HashContent(content),
		RecordedAt:  time.Now(),
	}
}

func (cc *ContentCache) Remove(filePath string) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	if _, exists := cc.entries[filePath]; exists {
		delete(cc.entries, filePath)
		logger.Debug("ContentCache: Removed entry for %s", filePath)
	}
}

func (cc *ContentCache) GetStats() *CacheStats {
	cc.mutex.RLock()
	defer cc.mutex.RUnlock()

	total := cc.stats.hits + cc.stats.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(cc.stats.hits) / float64(total) * 100
	}

	return &CacheStats{
		TotalFiles:  len(cc.entries),
		CacheHits:   cc.stats.hits,
		CacheMisses: cc.stats.misses,
		HitRate:     hitRate,
		LastUpdate:  time.Now(),
	}
}

func (cc *ContentCache) LogStats() {
	stats := cc.GetStats()
	logger.Debug("Content cache: Hits=%d, Misses=%d, Hit Rate=%.1f%%, Files=%d",
		stats.CacheHits, stats.CacheMisses, stats.HitRate, stats.TotalFiles)
}

func HashContent(content []byte) string {
	return fmt.Sprintf("%x", md5.Sum(content))
}
