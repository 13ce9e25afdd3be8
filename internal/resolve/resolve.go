// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns resolution options into download links by querying
// the media-link API once per target month and classifying each answer.
package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/ppd/internal/httputil"
	"github.com/pdiddy/ppd/pkg/types"
)

// fallbackFormats is appended to the requested format in every query.
const fallbackFormats = "EPUB,JWPUB,RTF,TXT,BRL,BES,DAISY"

// maxResponseBytes caps how much of an API response is read.
const maxResponseBytes = 4 << 20

// BuildURL returns the media-link API request URL for one issue query.
func BuildURL(endpoint string, q types.IssueQuery) string {
	params := url.Values{}
	params.Set("issue", q.Issue())
	params.Set("output", "json")
	params.Set("pub", string(q.Pub))
	params.Set("fileformat", string(q.Format)+","+fallbackFormats)
	params.Set("alllangs", "0")
	params.Set("langwritten", q.Lang)
	params.Set("txtCMSLang", q.Lang)
	return endpoint + "?" + params.Encode()
}

// Resolver queries the media-link API and narrates each month's result.
type Resolver struct {
	client *http.Client
	cfg    types.ResolverConfig
	out    io.Writer
	log    logrus.FieldLogger
}

// NewResolver returns a Resolver that prints notices to out and diagnostics
// to log. A nil log uses the logrus standard logger.
func NewResolver(client *http.Client, cfg types.ResolverConfig, out io.Writer, log logrus.FieldLogger) *Resolver {
	if cfg.Endpoint == "" {
		cfg.Endpoint = types.DefaultEndpoint
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{client: client, cfg: cfg, out: out, log: log}
}

// Lookup issues exactly one API request for q and classifies the response.
// Transport errors are returned unwrapped so httputil.Classify can see them.
func (r *Resolver) Lookup(ctx context.Context, q types.IssueQuery) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, BuildURL(r.cfg.Endpoint, q), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if r.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", r.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, r.client, req, r.cfg.MaxRetries, r.log)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	// The API answers unknown issues with a JSON array and a 404 status,
	// so the body is classified before the status code is considered.
	res, decErr := Decode(body, q.Lang, q.Format)
	if decErr != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("media-link API returned HTTP %d", resp.StatusCode)
		}
		return nil, decErr
	}
	return res, nil
}

// Resolve queries every month of the target sequence and returns the
// confirmed links in month order. Per-month failures are narrated and
// skipped. It stops early only on lost connectivity (httputil.ErrNoConnectivity)
// or interruption (httputil.ErrInterrupted); the links resolved up to that
// point are returned with the error.
func (r *Resolver) Resolve(ctx context.Context, opts types.ResolutionOptions) ([]types.ResolvedLink, error) {
	var links []types.ResolvedLink

	fmt.Fprintln(r.out, "Getting download links...")

	for _, month := range MonthSequence(opts.Month, opts.Continue) {
		q := opts.Query(month)
		if ctx.Err() != nil {
			return links, fmt.Errorf("resolving %s: %w", q, httputil.ErrInterrupted)
		}

		res, err := r.Lookup(ctx, q)
		if err != nil {
			switch httputil.Classify(err) {
			case httputil.KindInterrupted:
				return links, fmt.Errorf("resolving %s: %w", q, httputil.ErrInterrupted)
			case httputil.KindNoConnectivity:
				return links, fmt.Errorf("resolving %s: %w: %v", q, httputil.ErrNoConnectivity, err)
			case httputil.KindTimeout:
				fmt.Fprintf(r.out, "There was a request timeout. Download link for '%s' not fetched. Attempting the next publication...\n", q)
			default:
				fmt.Fprintf(r.out, "Download link for '%s' not fetched (%v). Attempting the next publication...\n", q, err)
			}
			r.log.WithError(err).WithField("issue", q.Issue()).Debug("lookup failed")
			continue
		}

		switch res := res.(type) {
		case NotFound:
			fmt.Fprintf(r.out, "%s does not exist.\n", q)
		case FormatUnavailable:
			formats := "none"
			if len(res.Available) > 0 {
				formats = strings.Join(res.Available, ", ")
			}
			fmt.Fprintf(r.out, "%s available format(s): %s\n", q, formats)
		case Found:
			fmt.Fprintf(r.out, "%s download link: %s\n", q, res.URL)
			links = append(links, types.ResolvedLink{URL: res.URL, Query: q})
		}
	}
	return links, nil
}
