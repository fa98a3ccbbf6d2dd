// Package textextract turns attachment bytes into plain text that the
// pattern catalog can run over.
package textextract

import (
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/forwarder/internal/encoding"
)

// ErrorKind classifies an extraction failure. Failures never abort the
// caller: the result simply carries empty text.
type ErrorKind string

const (
	ErrNone        ErrorKind = ""
	ErrUnsupported ErrorKind = "unsupported_type"
	ErrNoContent   ErrorKind = "no_content"
	ErrCorrupt     ErrorKind = "corrupt_file"
)

// Block is one run of text in reading order. For PDFs a block is a visual
// row; for XML it is an element's character data.
type Block struct {
	Page int
	Y    float64
	Tag  string
	Text string
}

type Result struct {
	Text    string
	Blocks  []Block
	Kind    ErrorKind
	Detail  string
	XML     *XMLDocument
	Charset encoding.Charset
}

func (r Result) Failed() bool {
	return r.Kind != ErrNone
}

// Supported extensions for invoice attachments.
var supported = map[string]string{
	".pdf":  "application/pdf",
	".xml":  "application/xml",
	".json": "application/json",
	".txt":  "text/plain",
}

// IsSupported reports whether filename has an extension the extractor reads.
func IsSupported(filename string) bool {
	_, ok := supported[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// MimeFor returns the canonical mime of filename, or octet-stream.
func MimeFor(filename string) string {
	if m, ok := supported[strings.ToLower(filepath.Ext(filename))]; ok {
		return m
	}

	return "application/octet-stream"
}

// Extract reads data according to mime, falling back to the file extension
// when mime is missing or generic.
func Extract(data []byte, mime, filename string) Result {
	kind := normalizeMime(mime)
	if kind == "" {
		kind = normalizeMime(MimeFor(filename))
	}

	var res Result

	switch kind {
	case "pdf":
		res = extractPDF(data)
	case "xml":
		res = extractXML(data)
	case "json":
		res = extractJSON(data)
	case "text":
		res = extractText(data)
	default:
		return Result{Kind: ErrUnsupported, Detail: mime}
	}

	if !res.Failed() && strings.TrimSpace(res.Text) == "" {
		return Result{Kind: ErrNoContent}
	}

	return res
}

func normalizeMime(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(strings.SplitN(mime, ";", 2)[0]))

	switch {
	case mime == "application/pdf":
		return "pdf"
	case mime == "application/xml", mime == "text/xml", strings.HasSuffix(mime, "+xml"):
		return "xml"
	case mime == "application/json", strings.HasSuffix(mime, "+json"):
		return "json"
	case mime == "text/plain":
		return "text"
	default:
		return ""
	}
}

func extractText(data []byte) Result {
	text, err := encoding.DecodeString(data)
	if err != nil {
		return Result{Kind: ErrCorrupt, Detail: err.Error()}
	}

	var blocks []Block
	for line := range strings.SplitSeq(text, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			blocks = append(blocks, Block{Text: l})
		}
	}

	return Result{Text: text, Blocks: blocks, Charset: encoding.Detect(data)}
}
