package pubdate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log.WithField("component", "test")
}

func createMetadataDB(t *testing.T, rows []struct {
	linkURL      string
	enclosureURL string
	published    int64
}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.sqlite")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE episodes (
		linkURL TEXT,
		enclosureURL TEXT,
		publishedTime INTEGER
	)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	for _, r := range rows {
		if _, err := db.Exec(
			`INSERT INTO episodes (linkURL, enclosureURL, publishedTime) VALUES (?, ?, ?)`,
			r.linkURL, r.enclosureURL, r.published); err != nil {
			t.Fatalf("insert row: %v", err)
		}
	}
	return path
}

func TestResolve(t *testing.T) {
	published := time.Date(2023, 5, 20, 14, 30, 0, 0, time.UTC).Unix()
	path := createMetadataDB(t, []struct {
		linkURL      string
		enclosureURL string
		published    int64
	}{
		{"https://x/ep1", "https://cdn/ep1.mp3", published},
		{"https://x/ep2", "https://cdn/ep2.mp3", 0},
	})

	s := Open(path, testLog())
	defer s.Close()

	if !s.Enabled() {
		t.Fatal("store not enabled for existing database")
	}

	tests := []struct {
		name        string
		episodeURL  string
		downloadURL string
		want        string
	}{
		{"match on link URL", "https://x/ep1", "https://nope", "2023-05-20"},
		{"match on enclosure URL", "https://nope", "https://cdn/ep1.mp3", "2023-05-20"},
		{"epoch zero means unset", "https://x/ep2", "https://cdn/ep2.mp3", ""},
		{"unknown episode", "https://x/ep9", "https://cdn/ep9.mp3", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Resolve(tt.episodeURL, tt.downloadURL); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q",
					tt.episodeURL, tt.downloadURL, got, tt.want)
			}
		})
	}
}

func TestResolveMemoizes(t *testing.T) {
	published := time.Date(2023, 5, 20, 0, 0, 0, 0, time.UTC).Unix()
	path := createMetadataDB(t, []struct {
		linkURL      string
		enclosureURL string
		published    int64
	}{
		{"https://x/ep1", "https://cdn/ep1.mp3", published},
	})

	s := Open(path, testLog())

	first := s.Resolve("https://x/ep1", "https://cdn/ep1.mp3")
	if first != "2023-05-20" {
		t.Fatalf("Resolve = %q, want 2023-05-20", first)
	}

	// Close the handle; a memoized lookup must not touch the database
	s.Close()
	if got := s.Resolve("https://x/ep1", "https://cdn/ep1.mp3"); got != first {
		t.Errorf("memoized Resolve = %q, want %q", got, first)
	}
}

func TestOpenMissingDatabaseDisablesResolver(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "absent.sqlite"), testLog())
	defer s.Close()

	if s.Enabled() {
		t.Error("store enabled for missing database")
	}
	if got := s.Resolve("https://x/ep1", "https://cdn/ep1.mp3"); got != "" {
		t.Errorf("disabled Resolve = %q, want empty", got)
	}
}

func TestOpenEmptyPathDisablesResolver(t *testing.T) {
	s := Open("", testLog())
	defer s.Close()

	if s.Enabled() {
		t.Error("store enabled for empty path")
	}
}
