package models

import "fmt"

// EpisodeRecord is one favorited episode as exported from the podcast app.
// DownloadURL is the only field guaranteed non-empty; everything else is
// defaulted downstream.
type EpisodeRecord struct {
	FeedTitle      string `json:"feedTitle"`
	Title          string `json:"title"`
	FavoriteDate   string `json:"userRecommendedTimeHuman"` // YYYY-MM-DD, date the episode was favorited
	EpisodeURL     string `json:"episodeURL"`
	DownloadURL    string `json:"downloadURL"`
	FeedLink       string `json:"feedLink,omitempty"`
	FeedArtworkURL string `json:"feedArtworkURL,omitempty"`
}

// Context renders the human-readable line used in failure reports
func (e EpisodeRecord) Context() string {
	return fmt.Sprintf("%s - %s (%s)", e.FeedTitle, e.Title, e.DownloadURL)
}

// OutcomeStatus classifies the result of one download attempt
type OutcomeStatus string

const (
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
)

// CodeTransport is the ledger code for failures with no HTTP response
// (DNS, connect, timeout, local I/O during transfer)
const CodeTransport = "000"

// DownloadOutcome is the per-episode result of the downloader.
// Code is an HTTP status rendered as a string, or CodeTransport.
type DownloadOutcome struct {
	Status OutcomeStatus
	Reason string // skip reason (OutcomeSkipped)
	Path   string // destination path (OutcomeSucceeded)
	Code   string // failure code (OutcomeFailed)
	Detail string // underlying error or status text (OutcomeFailed)
}

// Skipped builds a skip outcome
func Skipped(reason string) DownloadOutcome {
	return DownloadOutcome{Status: OutcomeSkipped, Reason: reason}
}

// Succeeded builds a success outcome for the written file
func Succeeded(path string) DownloadOutcome {
	return DownloadOutcome{Status: OutcomeSucceeded, Path: path}
}

// Failed builds a failure outcome under the given ledger code
func Failed(code, detail string) DownloadOutcome {
	return DownloadOutcome{Status: OutcomeFailed, Code: code, Detail: detail}
}

// Summary aggregates one batch run
type Summary struct {
	Downloaded            int
	Skipped               int
	Failed                int
	MissingPublishedDates int
}

// MigrationCounts aggregates one rename-migration run
type MigrationCounts struct {
	Renamed        int
	Missing        int
	Collisions     int
	AlreadyRenamed int
}
