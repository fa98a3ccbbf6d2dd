package textextract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/forwarder/internal/encoding"
)

// XMLDocument indexes an XML attachment by element local name so that
// electronic invoices can be read without a schema.
type XMLDocument struct {
	values map[string][]string
	attrs  map[string][]string
}

// Find returns the text of every element named tag, in document order.
// Matching ignores namespace prefixes and case.
func (d *XMLDocument) Find(tag string) []string {
	if d == nil {
		return nil
	}

	return d.values[strings.ToLower(tag)]
}

// First returns the first non-empty text of tag.
func (d *XMLDocument) First(tag string) string {
	for _, v := range d.Find(tag) {
		if v != "" {
			return v
		}
	}

	return ""
}

// Attr returns the values of attribute name on any element named tag.
func (d *XMLDocument) Attr(tag, name string) []string {
	if d == nil {
		return nil
	}

	return d.attrs[strings.ToLower(tag)+"@"+strings.ToLower(name)]
}

func extractXML(data []byte) Result {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) {
		return encoding.NewUTF8Reader(r)
	}

	doc := &XMLDocument{values: map[string][]string{}, attrs: map[string][]string{}}

	var (
		stack  []string
		text   []*strings.Builder
		sb     strings.Builder
		blocks []Block
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return Result{Kind: ErrCorrupt, Detail: err.Error()}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			stack = append(stack, name)
			text = append(text, &strings.Builder{})

			for _, a := range t.Attr {
				key := name + "@" + strings.ToLower(a.Name.Local)
				doc.attrs[key] = append(doc.attrs[key], a.Value)
			}
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}

			name := stack[len(stack)-1]
			value := strings.TrimSpace(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]

			doc.values[name] = append(doc.values[name], value)

			if value != "" {
				blocks = append(blocks, Block{Tag: name, Text: value})

				sb.WriteString(value)
				sb.WriteByte('\n')
			}
		}
	}

	return Result{Text: sb.String(), Blocks: blocks, XML: doc}
}
