package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"podarchive/pkg/config"
	"podarchive/pkg/models"
	"podarchive/pkg/utils"
)

// Downloader retrieves one episode enclosure to the archive. Resolution is
// two-phase: a HEAD request follows redirects to learn the final URL (and
// with it the file extension), then the transfer runs against the original
// URL, since resolved CDN URLs are often signed and short-lived.
type Downloader struct {
	client  *http.Client
	fetcher *Fetcher
	cfg     *config.AppConfig
	log     *logrus.Entry
}

// NewDownloader creates a Downloader sharing the configured client/fetcher
func NewDownloader(client *http.Client, fetcher *Fetcher, cfg *config.AppConfig, log *logrus.Entry) *Downloader {
	return &Downloader{
		client:  client,
		fetcher: fetcher,
		cfg:     cfg,
		log:     log,
	}
}

// Download fetches rawURL into "<archive root>/<destBase>.<ext>" and
// classifies the outcome. On any failure no partial file remains at the
// destination.
func (d *Downloader) Download(ctx context.Context, rawURL, destBase string) models.DownloadOutcome {
	finalURL, err := d.resolveFinalURL(ctx, rawURL)
	if err != nil {
		d.log.Warnf("Resolving final URL for %s failed: %v", rawURL, err)
		return models.Failed(models.CodeTransport, err.Error())
	}

	ext := d.inferExtension(finalURL)
	destPath := filepath.Join(d.cfg.ArchiveRoot, destBase+"."+ext)

	if err := os.MkdirAll(d.cfg.ArchiveRoot, 0755); err != nil {
		d.log.Errorf("Creating archive root %s failed: %v", d.cfg.ArchiveRoot, err)
		return models.Failed(models.CodeTransport, err.Error())
	}

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return models.Failed(models.CodeTransport, fmt.Errorf("%w: %v", utils.ErrRequestCreation, err).Error())
	}
	if d.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", d.cfg.UserAgent)
	}

	resp, err := d.fetcher.FetchWithRetry(ctx, req)
	if err != nil {
		if resp == nil {
			// Transport-level failure, no HTTP response
			return models.Failed(models.CodeTransport, err.Error())
		}
		code := strconv.Itoa(resp.StatusCode)
		status := resp.Status
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return models.Failed(code, status)
	}
	defer resp.Body.Close()

	out, err := os.Create(destPath)
	if err != nil {
		d.log.Errorf("Creating %s failed: %v", destPath, err)
		return models.Failed(models.CodeTransport, err.Error())
	}

	_, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		d.removePartial(destPath)
		if copyErr == nil {
			copyErr = closeErr
		}
		d.log.Warnf("Transfer to %s failed: %v", destPath, copyErr)
		return models.Failed(models.CodeTransport, copyErr.Error())
	}

	return models.Succeeded(destPath)
}

// resolveFinalURL follows redirects with a HEAD request and returns the
// final effective URL without transferring the body.
func (d *Downloader) resolveFinalURL(ctx context.Context, rawURL string) (*url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrRequestCreation, err)
	}
	if d.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", d.cfg.UserAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	// The status is deliberately ignored here: even a HEAD-hostile host has
	// told us where the redirect chain ends, and the GET will classify the
	// real outcome.
	return resp.Request.URL, nil
}

// inferExtension extracts the extension from the resolved URL's path
// component (query/fragment excluded), defaulting when the path carries none.
func (d *Downloader) inferExtension(u *url.URL) string {
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	if ext == "" {
		return d.cfg.DefaultExtension
	}
	return strings.ToLower(ext)
}

// removePartial deletes a partially-written destination file, logging (but
// otherwise ignoring) removal problems.
func (d *Downloader) removePartial(destPath string) {
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		d.log.Errorf("Removing partial file %s failed: %v", destPath, err)
	}
}
