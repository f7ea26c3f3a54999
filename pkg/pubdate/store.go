// Package pubdate resolves an episode's original publish date from the
// podcast app's local metadata database. The database is optional: when it
// is missing or unreadable the resolver degrades to always-unresolved and
// canonical names fall back to the favorite date.
package pubdate

import (
	"database/sql"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

// The app stores episode publish times as unix seconds; zero means the feed
// never supplied one.
const publishedTimeQuery = `
SELECT publishedTime FROM episodes
WHERE linkURL = ? OR enclosureURL = ?
ORDER BY publishedTime DESC
LIMIT 1`

// Store memoizes published-date lookups against the metadata database for
// the lifetime of a run. The zero lookup cost after the first query matters:
// the batch driver may resolve the same episode twice (existence check miss,
// then migration).
type Store struct {
	db  *sql.DB // nil when the resolver is disabled
	log *logrus.Entry

	mu    sync.Mutex
	cache map[string]string // composite key -> date or "" (looked up, not found)
}

// Open prepares a resolver for the metadata database at path. A missing or
// unopenable database yields a disabled resolver and a one-time warning,
// never an error: published-date resolution is a feature downgrade, not a
// precondition.
func Open(path string, log *logrus.Entry) *Store {
	s := &Store{log: log, cache: make(map[string]string)}

	if path == "" {
		log.Warn("No metadata database configured; published dates will fall back to favorite dates")
		return s
	}
	if _, err := os.Stat(path); err != nil {
		log.Warnf("Metadata database %s not accessible (%v); published dates will fall back to favorite dates", path, err)
		return s
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		log.Warnf("Opening metadata database failed (%v); published dates will fall back to favorite dates", err)
		return s
	}
	s.db = db
	return s
}

// Enabled reports whether lookups will hit the metadata database
func (s *Store) Enabled() bool {
	return s.db != nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Resolve returns the episode's publish date as YYYY-MM-DD, or "" when it
// cannot be determined. Results are memoized per (episodeURL, downloadURL)
// key; repeated lookups never re-query.
func (s *Store) Resolve(episodeURL, downloadURL string) string {
	key := episodeURL + "\x00" + downloadURL

	s.mu.Lock()
	defer s.mu.Unlock()

	if date, ok := s.cache[key]; ok {
		return date
	}

	date := s.query(episodeURL, downloadURL)
	s.cache[key] = date
	return date
}

func (s *Store) query(episodeURL, downloadURL string) string {
	if s.db == nil {
		return ""
	}

	var published int64
	err := s.db.QueryRow(publishedTimeQuery, episodeURL, downloadURL).Scan(&published)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ""
	case err != nil:
		s.log.Debugf("Published-date lookup failed for %s: %v", episodeURL, err)
		return ""
	case published <= 0:
		// Epoch zero is the store's "unset" sentinel
		return ""
	}

	return time.Unix(published, 0).UTC().Format("2006-01-02")
}
