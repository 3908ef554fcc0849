// Package journal keeps an append-only record of arbitration decisions
// for later audit.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var bucketDecisions = []byte("decisions")

// Keys must sort chronologically, so the timestamp is rendered at fixed
// width rather than with RFC3339Nano's trimmed fraction.
const keyTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one audited arbitration decision.
type Record struct {
	ID             string    `json:"id"`
	Time           time.Time `json:"time"`
	Package        string    `json:"package"`
	Outcome        string    `json:"outcome"`
	Rationale      string    `json:"rationale"`
	Version        string    `json:"version,omitempty"`
	Origin         string    `json:"origin,omitempty"`
	TrustedCount   int       `json:"trusted_count"`
	UntrustedCount int       `json:"untrusted_count"`
	Threshold      string    `json:"threshold,omitempty"`
	CacheHit       bool      `json:"cache_hit"`
	Prompted       bool      `json:"prompted"`
}

// Journal is a decision store backed by a bolt database.
type Journal struct {
	db *bolt.DB
}

// Open opens or creates the journal database at path. Opening fails
// after one second if another process holds the database lock.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDecisions)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append stores a record, assigning an ID and timestamp when unset, and
// returns the stored record.
func (j *Journal) Append(rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}
	key := []byte(rec.Time.UTC().Format(keyTimeLayout) + "/" + rec.ID)
	value, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("encode record: %w", err)
	}
	err = j.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDecisions).Put(key, value)
	})
	if err != nil {
		return Record{}, fmt.Errorf("append record: %w", err)
	}
	return rec, nil
}

// List returns the most recent records, newest first. A non-positive
// limit returns everything.
func (j *Journal) List(limit int) ([]Record, error) {
	var records []Record
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketDecisions).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Find returns the newest record whose ID starts with the given prefix.
func (j *Journal) Find(id string) (Record, bool, error) {
	if id == "" {
		return Record{}, false, nil
	}
	var found Record
	var ok bool
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketDecisions).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			if strings.HasPrefix(rec.ID, id) {
				found = rec
				ok = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("find record: %w", err)
	}
	return found, ok, nil
}
