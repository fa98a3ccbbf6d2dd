// Package export copies the documents behind a set of invoices into a local
// folder for the accountant, together with a plain-text summary.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/blob"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/upload"
)

type Invoices interface {
	List(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error)
}

type Files interface {
	Open(ctx context.Context, id uuid.UUID) (*upload.File, io.ReadCloser, error)
}

// Item is one exported invoice and where its document landed.
type Item struct {
	Invoice  *invoice.Invoice
	FilePath string
}

type Service struct {
	invoices Invoices
	files    Files
}

func NewService(invoices Invoices, files Files) *Service {
	return &Service{invoices: invoices, files: files}
}

// Export copies the stored document of every invoice matching filter into
// outputDir. Invoices entered by hand have no document and are listed with
// an empty FilePath.
func (s *Service) Export(ctx context.Context, filter invoice.ListFilter, outputDir string) ([]Item, error) {
	invoices, err := s.invoices.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	items := make([]Item, 0, len(invoices))
	taken := make(map[string]int)

	for _, inv := range invoices {
		item := Item{Invoice: inv}

		if inv.UploadedFileID != nil {
			path, err := s.copyDocument(ctx, inv, outputDir, taken)
			if err != nil {
				return nil, fmt.Errorf("exporting document for invoice %s: %w", inv.ID, err)
			}

			item.FilePath = path
		}

		items = append(items, item)
	}

	return items, nil
}

func (s *Service) copyDocument(ctx context.Context, inv *invoice.Invoice, dir string, taken map[string]int) (string, error) {
	f, rc, err := s.files.Open(ctx, *inv.UploadedFileID)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	name := uniqueName(fileName(inv, f), taken)
	path := filepath.Join(dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return path, nil
}

// fileName builds "<OT>_<provider>_<numero><ext>", dropping empty parts and
// keeping the extension of the stored file.
func fileName(inv *invoice.Invoice, f *upload.File) string {
	parts := make([]string, 0, 3)

	for _, p := range []string{inv.WorkOrderNumber, inv.ProviderName, inv.Numero} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) == 0 {
		return blob.SanitizeName(f.Filename)
	}

	return blob.SanitizeName(strings.Join(parts, "_") + filepath.Ext(f.Filename))
}

func uniqueName(name string, taken map[string]int) string {
	n := taken[name]
	taken[name] = n + 1

	if n == 0 {
		return name
	}

	ext := filepath.Ext(name)

	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n+1, ext)
}

// Summary renders one line per item, suitable for pasting into an email.
func (s *Service) Summary(items []Item) string {
	var sb strings.Builder

	for _, item := range items {
		inv := item.Invoice

		date := "sin fecha"
		if inv.FechaEmision != nil {
			date = inv.FechaEmision.Format("2006-01-02")
		}

		ot := inv.WorkOrderNumber
		if ot == "" {
			ot = "sin OT"
		}

		file := "Sin documento"
		if item.FilePath != "" {
			file = filepath.Base(item.FilePath)
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s | %s %s | pendiente %s | %s\n",
			date, ot, inv.ProviderName, inv.Numero,
			inv.MontoAplicable.StringFixed(2), inv.Moneda, inv.Pendiente().StringFixed(2), file)
	}

	return sb.String()
}
