package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"lyrics-meaning-api/config"
	"lyrics-meaning-api/logcolors"
	"lyrics-meaning-api/services/meaning"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Record is a persisted annotation. SongID is nullable: songs annotated
// from raw lyrics have no external id, and SQLite allows any number of
// NULLs under a unique index.
type Record struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	SongID    *string `gorm:"uniqueIndex:idx_song_id"`
	Title     string  `gorm:"index:idx_title"`
	Artist    string  `gorm:"index:idx_artist"`
	Payload   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Record) TableName() string { return "meanings" }

// Store persists annotations in SQLite through GORM
type Store struct {
	db *gorm.DB
}

var (
	defaultStore *Store
	defaultErr   error
	defaultOnce  sync.Once
)

// Default returns the process-wide store, opened lazily at the configured
// path. The error from the first open attempt is sticky.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultErr = Open(config.Get().Configuration.MeaningsDBPath)
	})
	return defaultStore, defaultErr
}

// Open creates or opens the annotation database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	log.Infof("%s Annotation store ready at %s", logcolors.LogStore, path)
	return &Store{db: db}, nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Count returns the number of stored annotations
func (s *Store) Count() (int64, error) {
	var n int64
	err := s.db.Model(&Record{}).Count(&n).Error
	return n, err
}

// Lookup finds a cached annotation. Keys are tried in order of
// specificity: songId, then title+artist, then title alone. Database
// errors and undecodable payloads count as misses.
func (s *Store) Lookup(songID *int64, title, artist string) (*meaning.Annotation, bool) {
	var record Record

	query := s.db.Limit(1)
	switch {
	case songID != nil:
		query = query.Where("song_id = ?", formatSongID(songID))
	case title != "" && artist != "":
		query = query.Where("title = ? AND artist = ?", title, artist)
	case title != "":
		query = query.Where("title = ?", title)
	default:
		return nil, false
	}

	if err := query.First(&record).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Warnf("%s Lookup failed: %v", logcolors.LogStore, err)
		}
		return nil, false
	}

	var annotation meaning.Annotation
	if err := json.Unmarshal([]byte(record.Payload), &annotation); err != nil {
		log.Warnf("%s Stored payload undecodable for record %d: %v", logcolors.LogStore, record.ID, err)
		return nil, false
	}

	return &annotation, true
}

// Save persists an annotation. Records with a songId upsert on it so a
// regeneration replaces the old payload; records without one are simply
// inserted.
func (s *Store) Save(songID *int64, title, artist string, annotation *meaning.Annotation) error {
	payload, err := json.Marshal(annotation)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	record := Record{
		SongID:  formatSongID(songID),
		Title:   title,
		Artist:  artist,
		Payload: string(payload),
	}

	if record.SongID != nil {
		return s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "song_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "artist", "payload", "updated_at"}),
		}).Create(&record).Error
	}

	return s.db.Create(&record).Error
}

func formatSongID(songID *int64) *string {
	if songID == nil {
		return nil
	}
	s := strconv.FormatInt(*songID, 10)
	return &s
}
