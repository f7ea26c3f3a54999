// Package archive answers "is this episode already on disk?" and relocates
// files between naming schemes. The archive root is a flat directory of
// <base name>.<ext> files plus transcript sidecars sharing the base name.
package archive

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"podarchive/pkg/utils"
)

// Exists reports whether any file named <base>.<ext> (any extension) is
// present under root. One or more matches means "already archived" - there
// is deliberately no content verification.
func Exists(root, base string) (bool, error) {
	matches, err := WithBase(root, base)
	return len(matches) > 0, err
}

// WithBase lists the file names under root whose name starts with
// "<base>." - the canonical file plus any sidecars. A missing root means no
// matches, not an error.
func WithBase(root, base string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.WrapErrorf(utils.ErrFilesystem, "reading archive root %s (%v)", root, err)
	}

	prefix := base + "."
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name := e.Name(); strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

// FastPattern compiles an existence pattern that wildcards the published
// date component, so the batch loop can confirm a skip without paying a
// published-date lookup. Literal components are escaped; the published date
// never contains spaces.
func FastPattern(favoriteDate, show, episode string) *regexp.Regexp {
	return regexp.MustCompile(
		`^F` + regexp.QuoteMeta(favoriteDate) +
			` P\S+ - ` + regexp.QuoteMeta(show) +
			` - ` + regexp.QuoteMeta(episode) + `\..+$`)
}

// ExistsPattern reports whether any file under root matches the compiled
// existence pattern. A missing root means not archived.
func ExistsPattern(root string, pattern *regexp.Regexp) (bool, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, utils.WrapErrorf(utils.ErrFilesystem, "reading archive root %s (%v)", root, err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if pattern.MatchString(e.Name()) {
			return true, nil
		}
	}
	return false, nil
}
