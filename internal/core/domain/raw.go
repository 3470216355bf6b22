package domain

import (
	"path/filepath"
	"strings"
)

// RawDocument is an upload as received from a UI host.
// It is the input to normalisation.
type RawDocument struct {
	// Name is the uploaded filename.
	Name string

	// MIMEType is the content type (e.g., "application/pdf").
	// When empty it is derived from the filename extension.
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// mimeByExtension maps supported upload extensions to MIME types.
var mimeByExtension = map[string]string{
	".pdf":      "application/pdf",
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
}

// DetectMIMEType returns the MIME type for the document.
// An explicit MIMEType wins over the filename extension.
func (r RawDocument) DetectMIMEType() string {
	if r.MIMEType != "" {
		return r.MIMEType
	}
	ext := strings.ToLower(filepath.Ext(r.Name))
	return mimeByExtension[ext]
}
