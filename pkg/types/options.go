// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the ppd pipeline:
// resolution options, issue queries, resolved links, download outcomes,
// and per-stage configuration.
package types

import (
	"fmt"
	"strings"
)

// Publication identifies a periodical series on the media-link API.
type Publication string

const (
	PubStudyWatchtower  Publication = "w"
	PubPublicWatchtower Publication = "wp"
	PubAwake            Publication = "g"
	PubMeetingWorkbook  Publication = "mwb"
)

// Publications lists every accepted publication code in help-text order.
var Publications = []Publication{PubStudyWatchtower, PubPublicWatchtower, PubAwake, PubMeetingWorkbook}

// ParsePublication validates a publication code. Codes are case-sensitive
// lowercase on the API, so only the exact values are accepted.
func ParsePublication(s string) (Publication, error) {
	p := Publication(strings.TrimSpace(s))
	for _, known := range Publications {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid publication %q (choose from w, wp, g, mwb)", s)
}

// Format is an uppercase file format code offered by the API.
type Format string

const (
	FormatPDF   Format = "PDF"
	FormatEPUB  Format = "EPUB"
	FormatJWPUB Format = "JWPUB"
	FormatRTF   Format = "RTF"
	FormatTXT   Format = "TXT"
	FormatBRL   Format = "BRL"
	FormatBES   Format = "BES"
	FormatDAISY Format = "DAISY"
)

// Formats lists every accepted format code.
var Formats = []Format{FormatPDF, FormatEPUB, FormatJWPUB, FormatRTF, FormatTXT, FormatBRL, FormatBES, FormatDAISY}

// ParseFormat validates a format code case-insensitively and returns it
// in its canonical uppercase form.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format %q (choose from PDF, EPUB, JWPUB, RTF, TXT, BRL, BES, DAISY)", s)
}

// ResolutionOptions is the validated, immutable input of one run.
// Construct it with NewResolutionOptions; the zero value is not valid.
type ResolutionOptions struct {
	Pub    Publication
	Year   int
	Month  int
	Lang   string
	Format Format

	// Continue expands the target month into every month up to December.
	Continue bool
}

// NewResolutionOptions validates raw CLI values and builds the options record.
// Language and format are normalized to uppercase.
func NewResolutionOptions(pub string, year, month int, lang, format string, cont bool) (ResolutionOptions, error) {
	p, err := ParsePublication(pub)
	if err != nil {
		return ResolutionOptions{}, err
	}
	if year < 1 || year > 9999 {
		return ResolutionOptions{}, fmt.Errorf("invalid year %d (must be 1-9999)", year)
	}
	if month < 1 || month > 12 {
		return ResolutionOptions{}, fmt.Errorf("invalid month %d (must be 1-12)", month)
	}
	l, err := normalizeLang(lang)
	if err != nil {
		return ResolutionOptions{}, err
	}
	f, err := ParseFormat(format)
	if err != nil {
		return ResolutionOptions{}, err
	}
	return ResolutionOptions{
		Pub:      p,
		Year:     year,
		Month:    month,
		Lang:     l,
		Format:   f,
		Continue: cont,
	}, nil
}

// YearString returns the year zero-padded to four digits.
func (o ResolutionOptions) YearString() string {
	return fmt.Sprintf("%04d", o.Year)
}

// Query returns the IssueQuery for the given two-digit month.
func (o ResolutionOptions) Query(month string) IssueQuery {
	return IssueQuery{
		Pub:    o.Pub,
		Year:   o.YearString(),
		Month:  month,
		Lang:   o.Lang,
		Format: o.Format,
	}
}

func normalizeLang(s string) (string, error) {
	l := strings.ToUpper(strings.TrimSpace(s))
	if l == "" {
		return "", fmt.Errorf("language code must not be empty")
	}
	for _, r := range l {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '-' {
			return "", fmt.Errorf("invalid language code %q", s)
		}
	}
	return l, nil
}
