// Package blob stores file bytes by logical path and hands out URLs end users
// can fetch without authenticating against the backend.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	// Put streams r to logicalPath and returns the key it was stored under.
	// The key may differ from logicalPath when the name was taken.
	Put(ctx context.Context, logicalPath string, r io.Reader) (string, error)
	URL(ctx context.Context, key string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SanitizeName keeps letters, digits, '-' and '_' in the base name and
// lowercases the extension: "Factura Nº 12.PDF" -> "Factura_N_12.pdf".
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)

	var b strings.Builder
	for _, r := range base {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	clean := strings.Trim(collapseUnderscores(b.String()), "_")
	if clean == "" {
		clean = "file"
	}

	ext = strings.ToLower(ext)
	for _, r := range ext[min(1, len(ext)):] {
		if r >= unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			ext = ""
			break
		}
	}

	return clean + ext
}

func collapseUnderscores(s string) string {
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}

	return s
}

// InvoicePath is the logical path of an invoice attachment received at t.
func InvoicePath(t time.Time, filename string) string {
	return fmt.Sprintf("invoices/%04d/%02d/%s", t.Year(), int(t.Month()), SanitizeName(filename))
}

// ReceiptPath is the logical path of a supplier payment receipt.
func ReceiptPath(t time.Time, filename string) string {
	return fmt.Sprintf("supplier_payments/%04d/%02d/%s", t.Year(), int(t.Month()), SanitizeName(filename))
}

// withSuffix inserts suffix before the extension of p.
func withSuffix(p, suffix string) string {
	ext := path.Ext(p)
	return strings.TrimSuffix(p, ext) + "_" + suffix + ext
}
