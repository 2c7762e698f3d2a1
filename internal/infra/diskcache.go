package infra

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/econify/globetrends/pkg/models"
)

// DiskCache is a read-through JSON cache for fetched indicator tables.
// Each entry is one file holding the table plus a fetch timestamp;
// entries older than MaxAge are treated as misses.
type DiskCache struct {
	Dir    string
	MaxAge time.Duration
}

// NewDiskCache creates a disk cache rooted at dir with the given max
// entry age.
func NewDiskCache(dir string, maxAge time.Duration) *DiskCache {
	return &DiskCache{Dir: dir, MaxAge: maxAge}
}

// diskEntry is the on-disk JSON layout.
type diskEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Data      models.TimeSeriesTable `json:"data"`
}

// Load returns the cached table for key, or ok=false on miss, expiry,
// or any read/decode problem. Corrupt entries are never fatal.
func (d *DiskCache) Load(key string) (models.TimeSeriesTable, bool) {
	raw, err := os.ReadFile(d.path(key))
	if err != nil {
		return nil, false
	}
	var entry diskEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if time.Since(entry.Timestamp) > d.MaxAge {
		return nil, false
	}
	return entry.Data, true
}

// Store writes the table under key, creating the cache dir as needed.
func (d *DiskCache) Store(key string, table models.TimeSeriesTable) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	raw, err := json.MarshalIndent(diskEntry{Timestamp: time.Now(), Data: table}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := os.WriteFile(d.path(key), raw, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// path maps an arbitrary key to a filesystem-safe file name.
func (d *DiskCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(d.Dir, hex.EncodeToString(sum[:8])+".json")
}
