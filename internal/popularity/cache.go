package popularity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Pirikara/pipgate/internal/logger"
	"github.com/Pirikara/pipgate/internal/resolve"
)

const cacheSubdir = "popularity"

// Entry pairs cached stats with the time the record was stored.
type Entry struct {
	Stats    Stats
	StoredAt time.Time
}

// FileCache persists one JSON record per package under <dir>/popularity,
// keyed by canonical package name. The file modification time is the
// record's storage time.
type FileCache struct {
	dir string
	log *logger.Logger
}

// NewFileCache creates a cache rooted at dir. The directory is created
// lazily on the first write.
func NewFileCache(dir string, log *logger.Logger) *FileCache {
	if log == nil {
		log = logger.Discard()
	}
	return &FileCache{dir: dir, log: log}
}

// Path returns the record file path for a package.
func (c *FileCache) Path(name string) string {
	return filepath.Join(c.dir, cacheSubdir, resolve.CanonicalName(name)+".json")
}

// Get returns the cached record for a package. A missing or unreadable
// record is a miss; a corrupt record is dropped and reported as a miss.
func (c *FileCache) Get(name string) (Entry, bool) {
	path := c.Path(name)
	fi, err := os.Stat(path)
	if err != nil {
		return Entry{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, false
	}
	var stats Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		c.log.Warn("popularity_cache", "dropping corrupt cache record", map[string]interface{}{
			"package": name,
			"path":    path,
			"error":   err.Error(),
		})
		os.Remove(path)
		return Entry{}, false
	}
	return Entry{Stats: stats, StoredAt: fi.ModTime()}, true
}

// Put stores a record for a package. The write goes through a temp file
// and a rename so concurrent readers never see a partial record.
func (c *FileCache) Put(name string, stats Stats) error {
	path := c.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure cache dir: %w", err)
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode cache record: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp record: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache record: %w", err)
	}
	return nil
}

// List returns every cached record sorted by package name. Corrupt
// records are skipped.
func (c *FileCache) List() ([]Entry, error) {
	dir := filepath.Join(c.dir, cacheSubdir)
	dirents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache dir: %w", err)
	}
	var entries []Entry
	for _, de := range dirents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(de.Name(), ".json")
		if entry, ok := c.Get(name); ok {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Stats.Package < entries[j].Stats.Package
	})
	return entries, nil
}

// Purge removes every cached record.
func (c *FileCache) Purge() error {
	if err := os.RemoveAll(filepath.Join(c.dir, cacheSubdir)); err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}
	return nil
}
