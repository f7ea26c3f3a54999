// Package transcribe generates text sidecars for archived audio by invoking
// an external speech-to-text tool per file.
package transcribe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"podarchive/pkg/utils"
)

// Options controls one transcription pass
type Options struct {
	Tool       string   // external executable, e.g. "whisper"
	Format     string   // sidecar format: txt, srt or vtt
	Extensions []string // audio extensions to consider, without dots
	Overwrite  bool     // regenerate sidecars that already exist
}

// Counts aggregates one transcription pass
type Counts struct {
	Transcribed int
	Skipped     int
	Failed      int
}

// Run walks the archive root and transcribes every audio file missing a
// sidecar. Per-file tool failures are logged and counted, never fatal.
func Run(ctx context.Context, root string, opts Options, log *logrus.Entry) (Counts, error) {
	if opts.Tool == "" {
		return Counts{}, fmt.Errorf("no transcription tool configured")
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return Counts{}, utils.WrapErrorf(utils.ErrFilesystem, "reading archive root %s (%v)", root, err)
	}

	wanted := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var counts Counts
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		if !wanted[ext] {
			continue
		}

		audioPath := filepath.Join(root, name)
		sidecar := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + "." + opts.Format
		if !opts.Overwrite {
			if _, err := os.Stat(sidecar); err == nil {
				log.Debugf("Sidecar exists, skipping: %s", name)
				counts.Skipped++
				continue
			}
		}

		log.Infof("Transcribing: %s", name)
		if err := runTool(ctx, opts, audioPath, root); err != nil {
			log.Warnf("Transcription of %s failed: %v", name, err)
			counts.Failed++
			continue
		}
		counts.Transcribed++
	}

	return counts, nil
}

// runTool invokes the external tool for one audio file. The tool writes the
// sidecar next to the audio itself.
func runTool(ctx context.Context, opts Options, audioPath, outDir string) error {
	args := []string{
		"--output_format", opts.Format,
		"--output_dir", outDir,
		audioPath,
	}
	cmd := exec.CommandContext(ctx, opts.Tool, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w (%s)", opts.Tool, err, strings.TrimSpace(string(out)))
	}
	return nil
}
