package export

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"podarchive/pkg/models"
)

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log.WithField("component", "test")
}

func createAppDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.sqlite")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE feeds (
			id INTEGER PRIMARY KEY,
			title TEXT,
			linkURL TEXT,
			artworkURL TEXT
		)`,
		`CREATE TABLE episodes (
			id INTEGER PRIMARY KEY,
			feedID INTEGER,
			title TEXT,
			linkURL TEXT,
			enclosureURL TEXT,
			userRecommended INTEGER,
			userRecommendedTime INTEGER
		)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("fixture schema: %v", err)
		}
	}

	older := time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC).Unix()
	newer := time.Date(2023, 6, 1, 8, 0, 0, 0, time.UTC).Unix()

	if _, err := db.Exec(`INSERT INTO feeds (id, title, linkURL, artworkURL) VALUES
		(1, 'Acme Podcast', 'https://acme.example', 'https://acme.example/art.png')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO episodes
		(feedID, title, linkURL, enclosureURL, userRecommended, userRecommendedTime) VALUES
		(1, 'Newer Favorite', 'https://acme.example/2', 'https://cdn/2.mp3', 1, ?),
		(1, 'Older Favorite', 'https://acme.example/1', 'https://cdn/1.mp3', 1, ?),
		(1, 'Not Favorited', 'https://acme.example/3', 'https://cdn/3.mp3', 0, 0)`,
		newer, older); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestFavorites(t *testing.T) {
	path := createAppDB(t)

	episodes, err := Favorites(path, testLog())
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}

	if len(episodes) != 2 {
		t.Fatalf("got %d episodes, want 2 (favorites only)", len(episodes))
	}

	// Ordered by favorite time, oldest first
	first := episodes[0]
	if first.Title != "Older Favorite" {
		t.Errorf("first title = %q, want Older Favorite", first.Title)
	}
	if first.FeedTitle != "Acme Podcast" {
		t.Errorf("FeedTitle = %q", first.FeedTitle)
	}
	if first.FavoriteDate != "2023-05-01" {
		t.Errorf("FavoriteDate = %q, want 2023-05-01", first.FavoriteDate)
	}
	if first.DownloadURL != "https://cdn/1.mp3" {
		t.Errorf("DownloadURL = %q", first.DownloadURL)
	}
	if first.FeedLink != "https://acme.example" || first.FeedArtworkURL != "https://acme.example/art.png" {
		t.Errorf("feed fields = %q / %q", first.FeedLink, first.FeedArtworkURL)
	}
}

func TestFavoritesMissingDatabase(t *testing.T) {
	if _, err := Favorites(filepath.Join(t.TempDir(), "absent.sqlite"), testLog()); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	in := []models.EpisodeRecord{
		{FeedTitle: "Acme Podcast", Title: "Episode 1", FavoriteDate: "2023-06-01", DownloadURL: "https://cdn/1.mp3"},
	}

	if err := WriteJSON(path, in); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out []models.EpisodeRecord
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("written file is not valid JSON: %v", err)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}
