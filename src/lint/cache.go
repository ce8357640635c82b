package lint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultCacheDir = ".lockdown/cache/lint"
	engineVersion   = "1"
	memEntries      = 1024
)

// Cache provides content-addressed lint result caching. Entries live on
// disk under Dir, fronted by an in-process LRU.
type Cache struct {
	Dir     string
	Enabled bool

	memOnce sync.Once
	mem     *lru.Cache[string, []Finding]
}

func (c *Cache) memory() *lru.Cache[string, []Finding] {
	c.memOnce.Do(func() {
		// lru.New only fails on a non-positive size.
		c.mem, _ = lru.New[string, []Finding](memEntries)
	})
	return c.mem
}

// ResolveCacheDir returns the cache directory for rootDir. A relative
// configured value is taken relative to rootDir.
func ResolveCacheDir(rootDir, configured string) string {
	if configured == "" {
		return filepath.Join(rootDir, defaultCacheDir)
	}
	if filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(rootDir, configured)
}

type cacheEntry struct {
	Findings []Finding `json:"findings"`
}

// Key computes a cache key from file path, content, module name and config.
// The path is part of the key because findings carry it.
func (c *Cache) Key(path string, content []byte, moduleName, configJSON string) string {
	h := sha256.New()
	h.Write([]byte(engineVersion))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(moduleName))
	h.Write([]byte{0})
	h.Write([]byte(configJSON))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves cached findings. Returns nil, false on cache miss.
func (c *Cache) Get(key string) ([]Finding, bool) {
	if !c.Enabled {
		return nil, false
	}
	if findings, ok := c.memory().Get(key); ok {
		return findings, true
	}

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	c.memory().Add(key, entry.Findings)
	return entry.Findings, true
}

// Put stores findings in the cache.
func (c *Cache) Put(key string, findings []Finding) error {
	if !c.Enabled {
		return nil
	}
	c.memory().Add(key, findings)

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	data, err := json.Marshal(cacheEntry{Findings: findings})
	if err != nil {
		return err
	}

	// Write-then-rename; readers never see a partial entry.
	tmp, err := os.CreateTemp(filepath.Dir(path), key[:8]+"-*.tmp")
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
	return os.Rename(tmp.Name(), path)
}

// Clear removes the entire cache directory.
func (c *Cache) Clear() error {
	c.memory().Purge()
	return os.RemoveAll(c.Dir)
}

// path returns the filesystem path for a cache key.
// Uses a 2-char prefix subdirectory to avoid huge flat directories.
func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key[:2], key+".json")
}
