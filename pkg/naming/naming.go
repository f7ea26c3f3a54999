package naming

import (
	"fmt"
	"regexp"
	"strings"

	"podarchive/pkg/models"
)

// Defaults for metadata the source app left empty
const (
	UnknownShow    = "Unknown Show"
	UnknownEpisode = "Unknown Episode"
	unknownDate    = "0000-00-00"
)

var (
	nonArchiveChars = regexp.MustCompile(`[^A-Za-z0-9 .-]`) // Everything outside the archive-safe set
	spaceRuns       = regexp.MustCompile(`\s+`)
)

// Sanitize reduces a raw metadata string to the archive-safe character set
// [A-Za-z0-9 .-]: underscores deleted, everything else foreign replaced by a
// space, space runs collapsed, edges trimmed.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "_", "")
	s = nonArchiveChars.ReplaceAllString(s, " ")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SplitNames derives the defaulted show and episode name components.
// The show name is stripped from the episode title case-insensitively (feeds
// routinely prefix or suffix it); if stripping empties the title, the
// unstripped sanitized title is kept instead.
func SplitNames(ep models.EpisodeRecord) (show, episode string) {
	show = Sanitize(ep.FeedTitle)
	title := Sanitize(ep.Title)

	episode = stripShow(title, show)
	if episode == "" {
		episode = title
	}

	if show == "" {
		show = UnknownShow
	}
	if episode == "" {
		episode = UnknownEpisode
	}
	return show, episode
}

// stripShow removes every case-insensitive occurrence of show from title and
// trims the separators that stripping leaves behind.
func stripShow(title, show string) string {
	if title == "" || show == "" {
		return title
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(show))
	out := re.ReplaceAllString(title, "")
	out = spaceRuns.ReplaceAllString(out, " ")
	return strings.Trim(out, " -:")
}

// FavoriteDate returns the episode's favorite date, defaulted when the
// export left it empty.
func FavoriteDate(ep models.EpisodeRecord) string {
	if ep.FavoriteDate == "" {
		return unknownDate
	}
	return ep.FavoriteDate
}

// LegacyBase renders the pre-published-date naming scheme,
// "<show> - <favoriteDate> - <title>". Only the rename migrator uses it, to
// locate files archived under the old layout.
func LegacyBase(ep models.EpisodeRecord) string {
	show := Sanitize(ep.FeedTitle)
	if show == "" {
		show = UnknownShow
	}
	title := Sanitize(ep.Title)
	if title == "" {
		title = UnknownEpisode
	}
	return fmt.Sprintf("%s - %s - %s", show, FavoriteDate(ep), title)
}
