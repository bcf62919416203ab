package store

import (
	"path/filepath"
	"testing"

	"lyrics-meaning-api/services/meaning"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "meanings.sqlite3"))
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func annotationWith(title string) *meaning.Annotation {
	return &meaning.Annotation{
		Title: title,
		Lines: []meaning.AnnotationLine{
			{LineNo: 0, Line: "a lyric line", Type: meaning.LineTypeLyric},
			{LineNo: 1, Line: "what it means", Type: meaning.LineTypeMeaning},
		},
	}
}

func TestStore_SaveAndLookupBySongID(t *testing.T) {
	s := setupTestStore(t)
	songID := int64(12345)

	if err := s.Save(&songID, "Hurt", "Johnny Cash", annotationWith("Hurt")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, ok := s.Lookup(&songID, "", "")
	if !ok {
		t.Fatal("Expected lookup hit by songId")
	}
	if got.Title != "Hurt" {
		t.Errorf("Expected title 'Hurt', got %q", got.Title)
	}
	if len(got.Lines) != 2 {
		t.Errorf("Expected 2 annotation lines, got %d", len(got.Lines))
	}
}

func TestStore_LookupByTitleArtist(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Save(nil, "Hurt", "Johnny Cash", annotationWith("Hurt")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, ok := s.Lookup(nil, "Hurt", "Johnny Cash"); !ok {
		t.Error("Expected lookup hit by title+artist")
	}
	if _, ok := s.Lookup(nil, "Hurt", "Nine Inch Nails"); ok {
		t.Error("Expected miss for different artist")
	}
}

func TestStore_LookupByTitleOnly(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Save(nil, "Yesterday", "The Beatles", annotationWith("Yesterday")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, ok := s.Lookup(nil, "Yesterday", ""); !ok {
		t.Error("Expected lookup hit by title alone")
	}
}

func TestStore_SongIDBeatsTitleArtist(t *testing.T) {
	s := setupTestStore(t)
	songID := int64(7)

	if err := s.Save(&songID, "Shared Title", "Shared Artist", annotationWith("by id")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(nil, "Shared Title", "Shared Artist", annotationWith("by title")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// With a songId, the title+artist pair must not be consulted
	got, ok := s.Lookup(&songID, "Shared Title", "Shared Artist")
	if !ok {
		t.Fatal("Expected lookup hit")
	}
	if got.Title != "by id" {
		t.Errorf("Expected songId record to win, got %q", got.Title)
	}

	// A songId with no record is a miss even when title+artist would match
	missingID := int64(999)
	if _, ok := s.Lookup(&missingID, "Shared Title", "Shared Artist"); ok {
		t.Error("Expected miss for unknown songId despite matching title+artist")
	}
}

func TestStore_UpsertOverwritesBySongID(t *testing.T) {
	s := setupTestStore(t)
	songID := int64(42)

	if err := s.Save(&songID, "Old Title", "Artist", annotationWith("old payload")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(&songID, "New Title", "Artist", annotationWith("new payload")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, ok := s.Lookup(&songID, "", "")
	if !ok {
		t.Fatal("Expected lookup hit")
	}
	if got.Title != "new payload" {
		t.Errorf("Expected upsert to replace payload, got %q", got.Title)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 record after upsert, got %d", count)
	}
}

func TestStore_NilSongIDRecordsAccumulate(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Save(nil, "Song A", "Artist", annotationWith("a")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(nil, "Song B", "Artist", annotationWith("b")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 records with nil songId, got %d", count)
	}
}

func TestStore_LookupNoKeys(t *testing.T) {
	s := setupTestStore(t)

	if _, ok := s.Lookup(nil, "", ""); ok {
		t.Error("Expected miss when no lookup keys provided")
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meanings.sqlite3")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	songID := int64(1)
	if err := s.Save(&songID, "Persisted", "Artist", annotationWith("Persisted")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	if _, ok := reopened.Lookup(&songID, "", ""); !ok {
		t.Error("Expected record to survive reopen")
	}
}
