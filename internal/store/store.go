package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/resonatefm/resonate/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Table names one owned entity table in the arena. Every row in every table
// except meta is keyed by (or prefixed with) the owning account id, which is
// what makes cascade deletion a prefix scan.
type Table string

const (
	TableAccounts   Table = "accounts"
	TableProfiles   Table = "profiles"
	TableHistory    Table = "history"
	TableStats      Table = "stats"
	TablePins       Table = "pins"
	TableSocial     Table = "social"
	TableMilestones Table = "milestones"
	TableFriends    Table = "friends"
	tableMeta       Table = "meta"
)

// ownedTables are the tables cascaded when an account is deleted.
var ownedTables = []Table{
	TableProfiles, TableHistory, TableStats,
	TablePins, TableSocial, TableMilestones, TableFriends,
}

var allTables = append([]Table{TableAccounts, tableMeta}, ownedTables...)

const currentAccountKey = "currentAccount"

// Record is the stored envelope for one row: an opaque payload plus the
// expiry metadata the cache layer enforces. ExpiresAt == 0 means no expiry.
// HourOfDay is only meaningful for hour-scoped rows.
type Record struct {
	Payload   json.RawMessage `json:"payload,omitempty"`
	ExpiresAt int64           `json:"expiresAt,omitempty"`
	HourOfDay int             `json:"hourOfDay"`
}

// Store persists the account object graph in BoltDB, with a write-through
// in-memory cache promoted on access. A nil db means memory-only mode.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex // protects memory cache

	cache map[string][]byte
}

// Open opens (or creates) the store under baseDir. An empty baseDir selects
// memory-only mode with no persistence. apiURL namespaces the db file so
// switching backends never mixes cached data.
func Open(baseDir, apiURL string) (*Store, error) {
	if baseDir == "" {
		return &Store{cache: make(map[string][]byte)}, nil
	}

	dir := baseDir
	if apiURL != "" {
		dir = filepath.Join(baseDir, hashURL(apiURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "resonate.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, table := range allTables {
			if _, err := tx.CreateBucketIfNotExists([]byte(table)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, cache: make(map[string][]byte)}, nil
}

func hashURL(raw string) string {
	normalized := strings.TrimRight(strings.ToLower(raw), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *Store) get(table Table, key string, dest interface{}) bool {
	cacheKey := string(table) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *Store) set(table Table, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(table) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		return b.Put([]byte(key), data)
	})
}

func (s *Store) delete(table Table, key string) {
	cacheKey := string(table) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

func (s *Store) deletePrefix(table Table, prefix string) {
	s.mu.Lock()
	cachePrefix := string(table) + ":" + prefix
	for k := range s.cache {
		if strings.HasPrefix(k, cachePrefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, _ := c.Seek(prefixBytes); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// scanPrefix returns raw values for all keys under prefix, in key order.
func (s *Store) scanPrefix(table Table, prefix string) [][]byte {
	if s.db == nil {
		// Memory-only mode: collect and sort by cache key
		s.mu.RLock()
		cachePrefix := string(table) + ":" + prefix
		keys := make([]string, 0)
		for k := range s.cache {
			if strings.HasPrefix(k, cachePrefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		values := make([][]byte, 0, len(keys))
		for _, k := range keys {
			values = append(values, s.cache[k])
		}
		s.mu.RUnlock()
		return values
	}

	var values [][]byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, v := c.Seek(prefixBytes); k != nil && strings.HasPrefix(string(k), prefix); k, v = c.Next() {
			data := make([]byte, len(v))
			copy(data, v)
			values = append(values, data)
		}
		return nil
	})
	return values
}

// === Accounts & current-account pointer ===

func (s *Store) SaveAccount(a domain.Account) error {
	return s.set(TableAccounts, a.ID, a)
}

func (s *Store) GetAccount(id string) (domain.Account, bool) {
	var a domain.Account
	ok := s.get(TableAccounts, id, &a)
	return a, ok
}

func (s *Store) SetCurrentAccountID(id string) error {
	return s.set(tableMeta, currentAccountKey, id)
}

func (s *Store) CurrentAccountID() (string, bool) {
	var id string
	if !s.get(tableMeta, currentAccountKey, &id) || id == "" {
		return "", false
	}
	return id, true
}

func (s *Store) ClearCurrentAccountID() {
	s.delete(tableMeta, currentAccountKey)
}

// DeleteAccount removes the account row and cascades through every owned
// table. Rows in owned tables are keyed by the account id directly (1:1
// entities) or prefixed with "<id>:" (composite-key entities); both forms
// are covered here so no orphaned row survives.
func (s *Store) DeleteAccount(id string) {
	s.delete(TableAccounts, id)
	for _, table := range ownedTables {
		s.delete(table, id)
		s.deletePrefix(table, id+":")
	}
}

// DeleteAll wipes every table, including the current-account pointer.
func (s *Store) DeleteAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		for _, table := range allTables {
			b := tx.Bucket([]byte(table))
			if b == nil {
				continue
			}
			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// === Records (TTL envelopes) ===

func (s *Store) PutRecord(table Table, key string, rec Record) error {
	return s.set(table, key, rec)
}

func (s *Store) GetRecord(table Table, key string) (Record, bool) {
	var rec Record
	ok := s.get(table, key, &rec)
	return rec, ok
}

// ClearRecordPayload empties an expired record's payload in place, keeping
// the row so the next write starts clean.
func (s *Store) ClearRecordPayload(table Table, key string) {
	rec, ok := s.GetRecord(table, key)
	if !ok {
		return
	}
	rec.Payload = nil
	s.set(table, key, rec)
}

// StampRecordExpiry forces the record's expiry to ts without touching the
// payload; used for explicit invalidation.
func (s *Store) StampRecordExpiry(table Table, key string, ts int64) {
	rec, ok := s.GetRecord(table, key)
	if !ok {
		return
	}
	rec.ExpiresAt = ts
	s.set(table, key, rec)
}

// StampPrefixExpiry applies StampRecordExpiry to every key under prefix.
func (s *Store) StampPrefixExpiry(table Table, prefix string, ts int64) {
	for _, key := range s.keysWithPrefix(table, prefix) {
		s.StampRecordExpiry(table, key, ts)
	}
}

func (s *Store) keysWithPrefix(table Table, prefix string) []string {
	if s.db == nil {
		s.mu.RLock()
		cachePrefix := string(table) + ":"
		var keys []string
		for k := range s.cache {
			if strings.HasPrefix(k, cachePrefix+prefix) {
				keys = append(keys, strings.TrimPrefix(k, cachePrefix))
			}
		}
		s.mu.RUnlock()
		sort.Strings(keys)
		return keys
	}

	var keys []string
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, _ := c.Seek(prefixBytes); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys
}

func (s *Store) DeleteRecord(table Table, key string) {
	s.delete(table, key)
}

func (s *Store) DeletePrefix(table Table, prefix string) {
	s.deletePrefix(table, prefix)
}

// === Song history (accumulating rows, no envelope) ===

// HistoryKey derives the composite identity for a play:
// "<accountID>:<listenedAt>" with the timestamp zero-padded so
// lexicographic key order equals chronological order.
func HistoryKey(accountID string, listenedAt int64) string {
	return fmt.Sprintf("%s:%020d", accountID, listenedAt)
}

func (s *Store) PutSongPlay(accountID string, play domain.SongPlay) error {
	return s.set(TableHistory, HistoryKey(accountID, play.ListenedAt), play)
}

// ScanSongHistory returns all plays for the account in listened-at order.
func (s *Store) ScanSongHistory(accountID string) []domain.SongPlay {
	values := s.scanPrefix(TableHistory, accountID+":")
	plays := make([]domain.SongPlay, 0, len(values))
	for _, data := range values {
		var play domain.SongPlay
		if err := json.Unmarshal(data, &play); err != nil {
			continue
		}
		plays = append(plays, play)
	}
	return plays
}
