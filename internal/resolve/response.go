// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pdiddy/ppd/pkg/types"
)

// Response is the classified media-link API answer for one issue query.
// It is one of NotFound, FormatUnavailable, or Found.
type Response interface {
	isResponse()
}

// NotFound means the issue does not exist for the language/publication/period.
type NotFound struct {
	Title  string
	Status int
}

// FormatUnavailable means the issue exists but not in the requested format.
type FormatUnavailable struct {
	// Available lists the offered format codes in document order.
	Available []string
}

// Found carries the download URL of the first file in the requested format.
type Found struct {
	URL string
}

func (NotFound) isResponse()          {}
func (FormatUnavailable) isResponse() {}
func (Found) isResponse()             {}

// apiError is the element of the array the API returns for unknown issues,
// e.g. [{"id":"...","title":"Not found","status":404}].
type apiError struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
}

// fileDescriptor is one downloadable file. The live API nests the URL under
// "file"; a flat "url" is accepted as well.
type fileDescriptor struct {
	URL  string `json:"url"`
	File struct {
		URL string `json:"url"`
	} `json:"file"`
}

func (d fileDescriptor) link() string {
	if d.File.URL != "" {
		return d.File.URL
	}
	return d.URL
}

// Decode classifies a media-link API response body for lang and format.
// Shapes other than the three known variants are reported as errors.
func Decode(body []byte, lang string, format types.Format) (Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response body")
	}

	switch trimmed[0] {
	case '[':
		var errs []apiError
		if err := json.Unmarshal(trimmed, &errs); err != nil {
			return nil, fmt.Errorf("parsing not-found response: %w", err)
		}
		nf := NotFound{}
		if len(errs) > 0 {
			nf.Title, nf.Status = errs[0].Title, errs[0].Status
		}
		return nf, nil
	case '{':
	default:
		return nil, fmt.Errorf("unexpected response shape starting with %q", trimmed[0])
	}

	var doc struct {
		Files map[string]json.RawMessage `json:"files"`
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if doc.Files == nil {
		return nil, errors.New("response has no files mapping")
	}

	raw, ok := doc.Files[lang]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return NotFound{}, nil
	}

	available, err := orderedKeys(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing files for %s: %w", lang, err)
	}
	var byFormat map[string][]fileDescriptor
	if err := json.Unmarshal(raw, &byFormat); err != nil {
		return nil, fmt.Errorf("parsing files for %s: %w", lang, err)
	}

	descs, ok := byFormat[string(format)]
	if !ok {
		return FormatUnavailable{Available: available}, nil
	}
	if len(descs) == 0 {
		return nil, fmt.Errorf("no files listed for %s/%s", lang, format)
	}
	u := descs[0].link()
	if u == "" {
		return nil, fmt.Errorf("first %s/%s file has no url", lang, format)
	}
	return Found{URL: u}, nil
}

// orderedKeys returns the keys of a JSON object in document order.
func orderedKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
