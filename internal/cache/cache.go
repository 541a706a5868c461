// Package cache stores front-end results on disk, keyed by source path and
// validated by a BLAKE3 hash of the source content.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

// Cache is a directory of parsed-file entries. A disabled cache misses on
// every lookup and ignores stores.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	version string
}

// Entry is one cached parse.
type Entry struct {
	Hash      string            `json:"hash"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	File      models.ParsedFile `json:"file"`
}

// Option configures a Cache.
type Option func(*Cache)

// WithVersion namespaces entries so that a front-end change invalidates them.
func WithVersion(v string) Option {
	return func(c *Cache) {
		c.version = v
	}
}

// New creates a cache in dir. A zero TTL never expires entries.
func New(dir string, ttlHours int, enabled bool, opts ...Option) (*Cache, error) {
	c := &Cache{enabled: enabled}
	for _, opt := range opts {
		opt(c)
	}
	if !enabled {
		return c, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	c.dir = dir
	c.ttl = time.Duration(ttlHours) * time.Hour
	return c, nil
}

// Enabled reports whether the cache reads and writes entries.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Lookup returns the cached parse of path if it was produced from content by
// the same front-end version and has not expired.
func (c *Cache) Lookup(path string, content []byte) (*models.ParsedFile, bool) {
	if !c.Enabled() {
		return nil, false
	}
	entryPath := c.keyPath(path)
	data, err := os.ReadFile(entryPath)
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		os.Remove(entryPath)
		return nil, false
	}
	if entry.Version != c.version || entry.Hash != HashBytes(content) {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
		os.Remove(entryPath)
		return nil, false
	}
	return &entry.File, true
}

// Store records the parse of path produced from content.
func (c *Cache) Store(path string, content []byte, file *models.ParsedFile) error {
	if !c.Enabled() || file == nil {
		return nil
	}
	data, err := json.Marshal(Entry{
		Hash:      HashBytes(content),
		Version:   c.version,
		Timestamp: time.Now(),
		File:      *file,
	})
	if err != nil {
		return err
	}
	// Readers never observe a partial entry.
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.keyPath(path))
}

// Invalidate removes the entry for path.
func (c *Cache) Invalidate(path string) error {
	if !c.Enabled() {
		return nil
	}
	err := os.Remove(c.keyPath(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.Enabled() {
		return nil
	}
	return os.RemoveAll(c.dir)
}

func (c *Cache) keyPath(path string) string {
	hash := blake3.Sum256([]byte(c.version + "\x00" + filepath.ToSlash(path)))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}

// Stats summarizes the cache directory.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.Enabled() {
		return &Stats{}, nil
	}
	stats := &Stats{}
	var oldest time.Time
	err := filepath.WalkDir(c.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.Entries++
		stats.TotalSize += info.Size()
		if oldest.IsZero() || info.ModTime().Before(oldest) {
			oldest = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	return stats, nil
}
