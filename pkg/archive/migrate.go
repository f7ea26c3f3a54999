package archive

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"podarchive/pkg/models"
	"podarchive/pkg/naming"
)

// Migrate relocates files archived under the legacy naming scheme to the
// current canonical scheme. It never overwrites or deletes: an existing
// target is counted as a collision and the source file is left untouched.
// Re-running over an already-migrated archive is a no-op reported as
// AlreadyRenamed/Missing.
func Migrate(episodes []models.EpisodeRecord, root string, builder *naming.Builder, log *logrus.Entry) (models.MigrationCounts, error) {
	var counts models.MigrationCounts

	for _, ep := range episodes {
		canonical := builder.CanonicalBase(ep)
		legacy := naming.LegacyBase(ep)

		current, err := WithBase(root, canonical)
		if err != nil {
			return counts, err
		}
		if len(current) > 0 {
			counts.AlreadyRenamed++
			continue
		}

		old, err := WithBase(root, legacy)
		if err != nil {
			return counts, err
		}
		if len(old) == 0 {
			counts.Missing++
			log.Debugf("No legacy file for %q", legacy)
			continue
		}

		for _, name := range old {
			// Keep the full suffix so sidecars (.txt, .srt) move with their audio
			suffix := strings.TrimPrefix(name, legacy)
			target := canonical + suffix
			targetPath := filepath.Join(root, target)

			if _, err := os.Stat(targetPath); err == nil {
				counts.Collisions++
				log.Warnf("Target %q already exists, leaving %q in place", target, name)
				continue
			}

			if err := os.Rename(filepath.Join(root, name), targetPath); err != nil {
				return counts, err
			}
			counts.Renamed++
			log.Infof("Renamed %q -> %q", name, target)
		}
	}

	return counts, nil
}
