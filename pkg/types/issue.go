// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"net/url"
	"path"
)

// IssueQuery is the unit of one media-link API call.
type IssueQuery struct {
	Pub    Publication `json:"pub" yaml:"pub"`
	Year   string      `json:"year" yaml:"year"`
	Month  string      `json:"month" yaml:"month"`
	Lang   string      `json:"lang" yaml:"lang"`
	Format Format      `json:"format" yaml:"format"`
}

// Issue returns the API issue parameter, YYYYMM.
func (q IssueQuery) Issue() string {
	return q.Year + q.Month
}

// String identifies the issue in narration, e.g. "mwb 01/2018 (AM)".
func (q IssueQuery) String() string {
	return fmt.Sprintf("%s %s/%s (%s)", q.Pub, q.Month, q.Year, q.Lang)
}

// ResolvedLink is a download URL confirmed by the API for one issue.
type ResolvedLink struct {
	URL   string     `json:"url" yaml:"url"`
	Query IssueQuery `json:"query" yaml:"query"`
}

// FileName returns the last path segment of the link URL. It returns ""
// when the URL has no usable file name.
func (l ResolvedLink) FileName() string {
	u, err := url.Parse(l.URL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

// Outcome is the result of fetching one resolved link.
type Outcome string

const (
	OutcomeDownloaded Outcome = "downloaded"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeFailed     Outcome = "failed"
)

// DownloadOutcome records what happened to one link during a batch.
type DownloadOutcome struct {
	Link    ResolvedLink `json:"link" yaml:"link"`
	Outcome Outcome      `json:"outcome" yaml:"outcome"`

	// Path is the local destination path of the file.
	Path string `json:"path" yaml:"path"`

	// Error holds the failure message for OutcomeFailed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
