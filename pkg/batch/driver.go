// Package batch orchestrates one archiving run over the favorites list:
// existence checks, downloads, failure accounting, summary.
package batch

import (
	"context"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"podarchive/pkg/archive"
	"podarchive/pkg/config"
	"podarchive/pkg/fetch"
	"podarchive/pkg/models"
	"podarchive/pkg/naming"
	"podarchive/pkg/report"
	"podarchive/pkg/utils"
)

// Driver runs the download loop. Per-episode failures are isolated: they are
// recorded in the ledger and never abort the batch.
type Driver struct {
	cfg        *config.AppConfig
	log        *logrus.Entry
	builder    *naming.Builder
	downloader *fetch.Downloader
	ledger     *report.Ledger

	mu      sync.Mutex
	summary models.Summary
}

// NewDriver assembles a batch driver from its collaborators
func NewDriver(cfg *config.AppConfig, builder *naming.Builder, downloader *fetch.Downloader, ledger *report.Ledger, log *logrus.Entry) *Driver {
	return &Driver{
		cfg:        cfg,
		log:        log,
		builder:    builder,
		downloader: downloader,
		ledger:     ledger,
	}
}

// Run processes the episodes in the given traversal order and returns the
// run summary. The only fatal error is an uncreatable archive root; every
// per-episode problem lands in the ledger instead.
func (d *Driver) Run(ctx context.Context, episodes []models.EpisodeRecord, order Order) (models.Summary, error) {
	if err := os.MkdirAll(d.cfg.ArchiveRoot, 0755); err != nil {
		return models.Summary{}, utils.WrapErrorf(utils.ErrFilesystem, "creating archive root %s (%v)", d.cfg.ArchiveRoot, err)
	}

	log := d.log.WithField("run_id", uuid.NewString())
	log.Infof("Archiving %d episode(s), order=%s, workers=%d", len(episodes), order, d.cfg.Workers)

	// Workers never return errors (failure isolation); the group is used
	// purely as a bounded pool.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)

	for _, i := range Indices(len(episodes), order) {
		ep := episodes[i]
		g.Go(func() error {
			d.process(ctx, ep, log)
			return nil
		})
	}
	g.Wait()

	d.mu.Lock()
	summary := d.summary
	d.mu.Unlock()
	summary.MissingPublishedDates = d.builder.MissingPublishedDates()
	return summary, nil
}

// process handles a single episode and folds its outcome into the summary
// and ledger.
func (d *Driver) process(ctx context.Context, ep models.EpisodeRecord, log *logrus.Entry) {
	if ctx.Err() != nil {
		return
	}

	outcome := d.attempt(ctx, ep, log)

	d.mu.Lock()
	defer d.mu.Unlock()
	switch outcome.Status {
	case models.OutcomeSkipped:
		d.summary.Skipped++
		log.Debugf("Skipping (%s): %s - %s", outcome.Reason, ep.FeedTitle, ep.Title)
	case models.OutcomeSucceeded:
		d.summary.Downloaded++
		log.Infof("Archived: %s", outcome.Path)
	case models.OutcomeFailed:
		d.summary.Failed++
		d.ledger.Record(outcome.Code, ep.Context())
		log.Warnf("Download failed (%s): %s", outcome.Code, ep.Context())
	}
}

// attempt runs the existence checks and, when the episode is not yet on
// disk, the download.
func (d *Driver) attempt(ctx context.Context, ep models.EpisodeRecord, log *logrus.Entry) models.DownloadOutcome {
	// Fast pattern first: confirms a skip without paying the published-date
	// lookup that the canonical name needs.
	show, episode := naming.SplitNames(ep)
	pattern := archive.FastPattern(naming.FavoriteDate(ep), show, episode)
	found, err := archive.ExistsPattern(d.cfg.ArchiveRoot, pattern)
	if err != nil {
		log.Errorf("Existence check failed: %v", err)
	}
	if found {
		return models.Skipped("already archived")
	}

	base := d.builder.CanonicalBase(ep)
	found, err = archive.Exists(d.cfg.ArchiveRoot, base)
	if err != nil {
		log.Errorf("Existence check failed: %v", err)
	}
	if found {
		return models.Skipped("already archived")
	}

	log.Infof("Downloading: %s - %s", ep.FeedTitle, ep.Title)
	return d.downloader.Download(ctx, ep.DownloadURL, base)
}
