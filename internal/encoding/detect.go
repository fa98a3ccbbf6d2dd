package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Charset names the encodings spreadsheets and text attachments arrive in.
type Charset string

const (
	CharsetUTF8        Charset = "UTF-8"
	CharsetUTF8BOM     Charset = "UTF-8-BOM"
	CharsetUTF16LE     Charset = "UTF-16LE"
	CharsetUTF16BE     Charset = "UTF-16BE"
	CharsetWindows1252 Charset = "windows-1252"
	CharsetISO88591    Charset = "ISO-8859-1"
	CharsetISO885915   Charset = "ISO-8859-15"
)

// Detect guesses the charset of buf.
//
// Detection order:
//  1. BOM
//  2. valid UTF-8
//  3. chardet heuristics
//  4. Windows-1252, the usual export charset of Spanish-locale office tools
func Detect(buf []byte) Charset {
	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		return CharsetUTF8BOM
	case bytes.HasPrefix(buf, bomUTF16LE):
		return CharsetUTF16LE
	case bytes.HasPrefix(buf, bomUTF16BE):
		return CharsetUTF16BE
	case utf8.Valid(buf):
		return CharsetUTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err == nil {
		switch result.Charset {
		case "UTF-8":
			return CharsetUTF8
		case "ISO-8859-1":
			return CharsetISO88591
		case "ISO-8859-15":
			return CharsetISO885915
		}
	}

	return CharsetWindows1252
}

func decoderFor(cs Charset) encoding.Encoding {
	switch cs {
	case CharsetUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case CharsetUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case CharsetISO88591:
		return charmap.ISO8859_1
	case CharsetISO885915:
		return charmap.ISO8859_15
	case CharsetWindows1252:
		return charmap.Windows1252
	default:
		return nil
	}
}

// NewUTF8Reader detects the encoding of the input and returns a reader
// that decodes the content to UTF-8. A UTF-8 BOM is stripped.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	buf, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	cs := Detect(buf)
	if cs == CharsetUTF8BOM {
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	}

	enc := decoderFor(cs)
	if enc == nil {
		return br, nil
	}

	return transform.NewReader(br, enc.NewDecoder()), nil
}

// DecodeString converts a whole in-memory payload to a UTF-8 string.
func DecodeString(b []byte) (string, error) {
	r, err := NewUTF8Reader(bytes.NewReader(b))
	if err != nil {
		return "", err
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decoding text: %w", err)
	}

	return string(out), nil
}
