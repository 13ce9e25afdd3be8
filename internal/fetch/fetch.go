// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads resolved links into a destination directory,
// one at a time, skipping files that already exist.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/ppd/internal/httputil"
	"github.com/pdiddy/ppd/pkg/types"
)

// ErrNoLinks is returned by Fetch when there is nothing to download.
var ErrNoLinks = errors.New("no download links found")

const separator = "###################################################################################################"

// Destination decides where downloaded files are written.
type Destination struct {
	// BaseDir is the root directory; empty means the working directory.
	BaseDir string

	// Hierarchy nests files under <pub>/<LANG>/<YYYY>/ below BaseDir.
	Hierarchy bool
}

// Dir returns the destination directory for the given options.
func (d Destination) Dir(opts types.ResolutionOptions) string {
	base := d.BaseDir
	if base == "" {
		base = "."
	}
	if !d.Hierarchy {
		return base
	}
	return filepath.Join(base, string(opts.Pub), opts.Lang, opts.YearString())
}

// BatchResult holds the outcome of a batch fetch.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Outcomes   []types.DownloadOutcome

	// Dir is the absolute destination directory.
	Dir string
}

// Total returns the number of links processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any link failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) record(o types.DownloadOutcome) {
	switch o.Outcome {
	case types.OutcomeDownloaded:
		r.Downloaded++
	case types.OutcomeSkipped:
		r.Skipped++
	case types.OutcomeFailed:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Fetcher retrieves resolved links sequentially. Its client should not
// carry a whole-request deadline; see httputil.NewStreamingClient.
type Fetcher struct {
	client *http.Client
	cfg    types.FetchConfig
	out    io.Writer
	log    logrus.FieldLogger
}

// NewFetcher returns a Fetcher that narrates to out.
func NewFetcher(client *http.Client, cfg types.FetchConfig, out io.Writer, log logrus.FieldLogger) *Fetcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Fetcher{client: client, cfg: cfg, out: out, log: log}
}

// Fetch downloads every link into dir in order. A failed transfer is
// recorded and the batch moves on. An empty link list returns ErrNoLinks
// without touching the filesystem. On interruption Fetch returns the partial
// result with httputil.ErrInterrupted; files already written stay on disk.
func (f *Fetcher) Fetch(ctx context.Context, links []types.ResolvedLink, dir string) (BatchResult, error) {
	var result BatchResult
	if len(links) == 0 {
		return result, ErrNoLinks
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return result, fmt.Errorf("resolving destination %s: %w", dir, err)
	}
	result.Dir = abs
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return result, fmt.Errorf("creating directory %s: %w", abs, err)
	}
	if err := CleanTemp(abs); err != nil {
		f.log.WithError(err).Warn("could not remove stale temp files")
	}

	fmt.Fprintln(f.out, separator)

	for i, link := range links {
		if ctx.Err() != nil {
			f.summarize(result)
			return result, fmt.Errorf("fetching: %w", httputil.ErrInterrupted)
		}
		if i > 0 && f.cfg.DownloadDelay > 0 {
			select {
			case <-ctx.Done():
				f.summarize(result)
				return result, fmt.Errorf("fetching: %w", httputil.ErrInterrupted)
			case <-time.After(f.cfg.DownloadDelay):
			}
		}

		outcome, err := f.fetchOne(ctx, link, abs)
		if httputil.Classify(err) == httputil.KindInterrupted {
			f.summarize(result)
			return result, fmt.Errorf("fetching %s: %w", link.FileName(), httputil.ErrInterrupted)
		}
		result.record(outcome)
	}

	f.summarize(result)
	fmt.Fprintf(f.out, "done... download(s) saved to '%s'\n", abs)
	return result, nil
}

// summarize prints the outcome counts, partial ones included.
func (f *Fetcher) summarize(r BatchResult) {
	fmt.Fprintf(f.out, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		r.Downloaded, r.Skipped, r.Failed, r.Total())
}

// fetchOne handles one link. The returned error is non-nil only for
// interruption; every other failure is folded into the outcome.
func (f *Fetcher) fetchOne(ctx context.Context, link types.ResolvedLink, dir string) (types.DownloadOutcome, error) {
	o := types.DownloadOutcome{Link: link}

	name := link.FileName()
	if name == "" {
		o.Outcome = types.OutcomeFailed
		o.Error = "no file name in URL"
		fmt.Fprintf(f.out, "'%s' has no file name. Skipping...\n", link.URL)
		return o, nil
	}
	o.Path = filepath.Join(dir, name)

	if _, err := os.Stat(o.Path); err == nil {
		o.Outcome = types.OutcomeSkipped
		fmt.Fprintf(f.out, "'%s' already exists. Skipping...\n", name)
		return o, nil
	}

	fmt.Fprintf(f.out, "downloading: %s\n", name)
	start := time.Now()
	n, err := f.download(ctx, link.URL, o.Path)
	if err != nil {
		kind := httputil.Classify(err)
		if kind == httputil.KindInterrupted {
			return o, err
		}
		o.Outcome = types.OutcomeFailed
		o.Error = err.Error()
		if kind == httputil.KindReset {
			fmt.Fprintf(f.out, "The connection was reset by the remote server. '%s' not downloaded. Skipping...\n", name)
		} else {
			fmt.Fprintf(f.out, "failed:  %s (%v)\n", name, err)
		}
		f.log.WithError(err).WithFields(logrus.Fields{"file": name, "kind": kind}).Debug("download failed")
		return o, nil
	}

	o.Outcome = types.OutcomeDownloaded
	f.log.WithFields(logrus.Fields{
		"file":    name,
		"bytes":   n,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("download complete")
	return o, nil
}

// download streams url to destPath through a temporary file in the same
// directory, renaming it into place on success.
func (f *Fetcher) download(ctx context.Context, url, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.cfg.MaxRetries, f.log)
	if err != nil {
		return 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".ppd-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	var dst io.Writer = tmpFile
	var bar *progress
	if f.cfg.Progress {
		bar = newProgress(f.out, filepath.Base(destPath), resp.ContentLength)
		dst = io.MultiWriter(tmpFile, bar)
	}

	n, copyErr := io.Copy(dst, ctxReader{ctx: ctx, r: resp.Body})
	closeErr := tmpFile.Close()
	if bar != nil {
		bar.finish()
	}
	if copyErr != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("closing temp file: %w", closeErr)
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		os.Remove(tmpPath)
		return n, fmt.Errorf("writing download: %w (got %d of %d bytes)", io.ErrUnexpectedEOF, n, resp.ContentLength)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}

// ctxReader stops a copy as soon as ctx is cancelled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// CleanTemp removes temporary files left in dir by a killed run.
func CleanTemp(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, ".ppd-") || !strings.HasSuffix(name, ".tmp") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
