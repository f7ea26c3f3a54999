package naming

import (
	"fmt"
	"sync/atomic"

	"podarchive/pkg/models"
)

// DateResolver looks up an episode's original publish date. An empty result
// means the date could not be resolved.
type DateResolver interface {
	Resolve(episodeURL, downloadURL string) string
}

// Builder derives canonical archive base names. It carries the published-date
// resolver and the missing-date counter explicitly so runs stay isolated;
// safe for concurrent use.
type Builder struct {
	resolver DateResolver
	missing  atomic.Int64
}

// NewBuilder creates a Builder backed by the given resolver
func NewBuilder(resolver DateResolver) *Builder {
	return &Builder{resolver: resolver}
}

// CanonicalBase renders the current naming scheme,
// "F<favoriteDate> P<publishedDate> - <show> - <episode>" (no extension).
// An unresolvable published date falls back to the favorite date and is
// counted.
func (b *Builder) CanonicalBase(ep models.EpisodeRecord) string {
	show, episode := SplitNames(ep)
	fav := FavoriteDate(ep)

	pub := b.resolver.Resolve(ep.EpisodeURL, ep.DownloadURL)
	if pub == "" {
		pub = fav
		b.missing.Add(1)
	}

	return fmt.Sprintf("F%s P%s - %s - %s", fav, pub, show, episode)
}

// MissingPublishedDates reports how many canonical names fell back to the
// favorite date so far.
func (b *Builder) MissingPublishedDates() int {
	return int(b.missing.Load())
}
