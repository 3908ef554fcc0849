package popularity

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCachePutGet(t *testing.T) {
	cache := NewFileCache(t.TempDir(), nil)

	stats := Stats{Package: "sampleproject", LastDay: 1128, LastWeek: 7099, LastMonth: 28830}
	if err := cache.Put("sampleproject", stats); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entry, ok := cache.Get("sampleproject")
	if !ok {
		t.Fatal("Get missed after Put")
	}
	if entry.Stats != stats {
		t.Errorf("stats = %+v, want %+v", entry.Stats, stats)
	}
	if entry.StoredAt.IsZero() {
		t.Error("StoredAt is zero")
	}
}

func TestFileCacheCanonicalNames(t *testing.T) {
	cache := NewFileCache(t.TempDir(), nil)

	if err := cache.Put("Sample.Project", Stats{Package: "sample-project", LastDay: 5}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entry, ok := cache.Get("sample_project")
	if !ok {
		t.Fatal("spelling variants should share one record")
	}
	if entry.Stats.LastDay != 5 {
		t.Errorf("last_day = %d, want 5", entry.Stats.LastDay)
	}
}

func TestFileCacheMiss(t *testing.T) {
	cache := NewFileCache(t.TempDir(), nil)
	if _, ok := cache.Get("nothing-here"); ok {
		t.Error("Get on empty cache reported a hit")
	}
}

func TestFileCacheCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(dir, nil)

	path := cache.Path("broken")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := cache.Get("broken"); ok {
		t.Error("corrupt record reported as hit")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt record was not removed")
	}
}

func TestFileCacheList(t *testing.T) {
	cache := NewFileCache(t.TempDir(), nil)

	for _, name := range []string{"zebra", "alpha"} {
		if err := cache.Put(name, Stats{Package: name, FetchedAt: time.Now().UTC()}); err != nil {
			t.Fatalf("Put(%s) failed: %v", name, err)
		}
	}

	entries, err := cache.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Stats.Package != "alpha" || entries[1].Stats.Package != "zebra" {
		t.Errorf("entries not sorted by package: %s, %s", entries[0].Stats.Package, entries[1].Stats.Package)
	}
}

func TestFileCacheListEmpty(t *testing.T) {
	cache := NewFileCache(t.TempDir(), nil)
	entries, err := cache.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestFileCachePurge(t *testing.T) {
	cache := NewFileCache(t.TempDir(), nil)

	if err := cache.Put("sampleproject", Stats{Package: "sampleproject"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := cache.Purge(); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if _, ok := cache.Get("sampleproject"); ok {
		t.Error("record survived Purge")
	}
}
