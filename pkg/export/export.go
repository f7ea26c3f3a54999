// Package export pulls the favorited episodes out of the podcast app's
// SQLite database into the JSON file the download command consumes.
package export

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"podarchive/pkg/models"
	"podarchive/pkg/utils"
)

const favoritesQuery = `
SELECT f.title,
       e.title,
       date(e.userRecommendedTime, 'unixepoch'),
       e.linkURL,
       e.enclosureURL,
       f.linkURL,
       f.artworkURL
FROM episodes e
JOIN feeds f ON f.id = e.feedID
WHERE e.userRecommended = 1
ORDER BY e.userRecommendedTime`

// Favorites reads every favorited episode from the app database at dbPath.
// Unlike the published-date lookup, a missing database here is fatal: there
// is nothing to export without it.
func Favorites(dbPath string, log *logrus.Entry) ([]models.EpisodeRecord, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, utils.WrapErrorf(utils.ErrFilesystem, "app database %s (%v)", dbPath, err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open app database %s: %w", dbPath, err)
	}
	defer db.Close()

	rows, err := db.Query(favoritesQuery)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	var episodes []models.EpisodeRecord
	for rows.Next() {
		var feedTitle, title, favDate, episodeURL, downloadURL, feedLink, artworkURL sql.NullString
		if err := rows.Scan(&feedTitle, &title, &favDate, &episodeURL, &downloadURL, &feedLink, &artworkURL); err != nil {
			return nil, fmt.Errorf("scan favorite row: %w", err)
		}
		episodes = append(episodes, models.EpisodeRecord{
			FeedTitle:      feedTitle.String,
			Title:          title.String,
			FavoriteDate:   favDate.String,
			EpisodeURL:     episodeURL.String,
			DownloadURL:    downloadURL.String,
			FeedLink:       feedLink.String,
			FeedArtworkURL: artworkURL.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}

	log.Infof("Exported %d favorite(s) from %s", len(episodes), dbPath)
	return episodes, nil
}

// WriteJSON writes the exported episodes to outPath as indented JSON
func WriteJSON(outPath string, episodes []models.EpisodeRecord) error {
	data, err := json.MarshalIndent(episodes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0644); err != nil {
		return utils.WrapErrorf(utils.ErrFilesystem, "write %s (%v)", outPath, err)
	}
	return nil
}
