// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ppd/pkg/types"
)

const sampleNotFoundJSON = `[{"id":"b1f0c6c4-0f3e-4a0c-9a7c-0e3e4c2d1b6a","title":"Not found","status":404}]`

const sampleFoundJSON = `{
  "pubName": "Meeting Workbook",
  "files": {
    "AM": {
      "PDF": [{"title": "Regular", "file": {"url": "https://cdn.example.org/mwb_AM_201801.pdf"}}],
      "JWPUB": [
        {"title": "Regular", "file": {"url": "https://cdn.example.org/mwb_AM_201801.jwpub", "checksum": "abc"}},
        {"title": "Second", "file": {"url": "https://cdn.example.org/second.jwpub"}}
      ],
      "EPUB": [{"title": "Regular", "file": {"url": "https://cdn.example.org/mwb_AM_201801.epub"}}]
    }
  }
}`

func TestDecode_ArrayIsNotFound(t *testing.T) {
	res, err := Decode([]byte(sampleNotFoundJSON), "AM", types.FormatJWPUB)
	require.NoError(t, err)
	nf, ok := res.(NotFound)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, 404, nf.Status)
	assert.Equal(t, "Not found", nf.Title)
}

func TestDecode_EmptyArrayIsNotFound(t *testing.T) {
	res, err := Decode([]byte(` [] `), "AM", types.FormatJWPUB)
	require.NoError(t, err)
	assert.IsType(t, NotFound{}, res)
}

func TestDecode_Found(t *testing.T) {
	res, err := Decode([]byte(sampleFoundJSON), "AM", types.FormatJWPUB)
	require.NoError(t, err)
	assert.Equal(t, Found{URL: "https://cdn.example.org/mwb_AM_201801.jwpub"}, res)
}

func TestDecode_FlatURLDescriptor(t *testing.T) {
	body := `{"files":{"E":{"PDF":[{"url":"https://cdn.example.org/g_E_201009.pdf"}]}}}`
	res, err := Decode([]byte(body), "E", types.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, Found{URL: "https://cdn.example.org/g_E_201009.pdf"}, res)
}

func TestDecode_FormatUnavailableListsFormatsInOrder(t *testing.T) {
	res, err := Decode([]byte(sampleFoundJSON), "AM", types.FormatRTF)
	require.NoError(t, err)
	assert.Equal(t, FormatUnavailable{Available: []string{"PDF", "JWPUB", "EPUB"}}, res)
}

func TestDecode_MissingLanguageIsNotFound(t *testing.T) {
	res, err := Decode([]byte(sampleFoundJSON), "E", types.FormatJWPUB)
	require.NoError(t, err)
	assert.IsType(t, NotFound{}, res)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"scalar", `"nope"`},
		{"malformed", `{"files": {`},
		{"no files", `{"pubName": "x"}`},
		{"empty descriptor list", `{"files":{"AM":{"JWPUB":[]}}}`},
		{"descriptor without url", `{"files":{"AM":{"JWPUB":[{"title":"x"}]}}}`},
		{"language not object", `{"files":{"AM":[1,2]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.body), "AM", types.FormatJWPUB)
			assert.Error(t, err)
		})
	}
}
