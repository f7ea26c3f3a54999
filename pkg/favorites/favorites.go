// Package favorites reads the exported favorites list consumed by the
// download and rename commands.
package favorites

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"podarchive/pkg/models"
)

// Load reads an exported favorites JSON array. Records without a download
// URL cannot be archived and are dropped with a warning; a missing or
// malformed file is an error (the caller treats it as a precondition
// failure).
func Load(path string, log *logrus.Entry) ([]models.EpisodeRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read favorites file: %w", err)
	}

	var episodes []models.EpisodeRecord
	if err := json.Unmarshal(data, &episodes); err != nil {
		return nil, fmt.Errorf("parse favorites file %s: %w", path, err)
	}

	kept := episodes[:0]
	for _, ep := range episodes {
		if ep.DownloadURL == "" {
			log.Warnf("Dropping favorite with no download URL: %s - %s", ep.FeedTitle, ep.Title)
			continue
		}
		kept = append(kept, ep)
	}

	log.Infof("Loaded %d favorite(s) from %s", len(kept), path)
	return kept, nil
}
