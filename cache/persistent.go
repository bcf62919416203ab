package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"lyrics-meaning-api/logcolors"
	"lyrics-meaning-api/utils"
)

const bucketName = "lyrics"

// PersistentCache stores retrieved lyrics documents in BoltDB with an
// in-memory front so repeated song lookups skip search and scraping.
// Values are opaque strings (JSON-encoded documents), optionally gzipped.
type PersistentCache struct {
	db                 *bolt.DB
	memCache           sync.Map
	dbPath             string
	compressionEnabled bool
}

// NewPersistentCache opens (or creates) the cache database at dbPath.
func NewPersistentCache(dbPath string, compressionEnabled bool) (*PersistentCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	pc := &PersistentCache{
		db:                 db,
		dbPath:             dbPath,
		compressionEnabled: compressionEnabled,
	}

	if err := pc.loadToMemory(); err != nil {
		log.Warnf("%s Failed to preload cache to memory: %v", logcolors.LogCache, err)
	}

	log.Infof("%s Persistent cache initialized at %s (compression: %v)", logcolors.LogCacheInit, dbPath, compressionEnabled)
	return pc, nil
}

func (pc *PersistentCache) loadToMemory() error {
	count := 0
	err := pc.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			stored := make([]byte, len(v))
			copy(stored, v)
			pc.memCache.Store(string(k), stored)
			count++
			return nil
		})
	})
	if err != nil {
		return err
	}

	log.Infof("%s Loaded %d entries from disk to memory", logcolors.LogCache, count)
	return nil
}

func (pc *PersistentCache) decode(data []byte) (string, bool) {
	if pc.compressionEnabled {
		value, err := utils.DecompressText(data)
		if err != nil {
			log.Errorf("%s Error decompressing cache value: %v", logcolors.LogCache, err)
			return "", false
		}
		return value, true
	}
	return string(data), true
}

// Get retrieves a value, checking memory first, then disk.
func (pc *PersistentCache) Get(key string) (string, bool) {
	if data, ok := pc.memCache.Load(key); ok {
		return pc.decode(data.([]byte))
	}

	var data []byte
	err := pc.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		v := b.Get([]byte(key))
		if v == nil {
			return fmt.Errorf("key not found")
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return "", false
	}

	pc.memCache.Store(key, data)
	return pc.decode(data)
}

// Set stores a value in both memory and disk.
func (pc *PersistentCache) Set(key, value string) error {
	var data []byte
	if pc.compressionEnabled {
		var err error
		data, err = utils.CompressText(value)
		if err != nil {
			return fmt.Errorf("failed to compress cache value: %w", err)
		}
	} else {
		data = []byte(value)
	}

	pc.memCache.Store(key, data)

	return pc.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Put([]byte(key), data)
	})
}

// Delete removes a key from cache.
func (pc *PersistentCache) Delete(key string) error {
	pc.memCache.Delete(key)

	return pc.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Delete([]byte(key))
	})
}

// Clear removes all entries.
func (pc *PersistentCache) Clear() error {
	pc.memCache.Range(func(key, value interface{}) bool {
		pc.memCache.Delete(key)
		return true
	})

	return pc.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

// Keys returns all cache keys currently in memory.
func (pc *PersistentCache) Keys() []string {
	var keys []string
	pc.memCache.Range(func(k, v interface{}) bool {
		keys = append(keys, k.(string))
		return true
	})
	return keys
}

// Stats returns the number of keys and the approximate stored size in KB.
func (pc *PersistentCache) Stats() (numKeys int, sizeInKB int) {
	size := 0
	pc.memCache.Range(func(k, v interface{}) bool {
		numKeys++
		size += len(k.(string)) + len(v.([]byte))
		return true
	})
	sizeInKB = size / 1024
	return
}

// Close closes the database.
func (pc *PersistentCache) Close() error {
	if pc.db != nil {
		return pc.db.Close()
	}
	return nil
}
