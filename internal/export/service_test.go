package export_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/export"
	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/upload"
)

type fakeInvoices struct {
	list   []*invoice.Invoice
	filter invoice.ListFilter
}

func (f *fakeInvoices) List(_ context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	f.filter = filter
	return f.list, nil
}

type fakeFiles map[uuid.UUID]*upload.File

func (f fakeFiles) Open(_ context.Context, id uuid.UUID) (*upload.File, io.ReadCloser, error) {
	file, ok := f[id]
	if !ok {
		return nil, nil, apperr.NotFound("file")
	}

	return file, io.NopCloser(strings.NewReader("pdf:" + file.Filename)), nil
}

func TestService_Export(t *testing.T) {
	fileA, fileB := uuid.New(), uuid.New()
	emitted := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	invoices := &fakeInvoices{list: []*invoice.Invoice{
		{
			ID: uuid.New(), Numero: "F-001", ProviderName: "Naviera Sur", WorkOrderNumber: "25OT001",
			UploadedFileID: &fileA, FechaEmision: &emitted,
			Monto: decimal.NewFromInt(100), MontoAplicable: decimal.NewFromInt(100), MontoPagado: decimal.NewFromInt(40),
			Moneda: "USD",
		},
		// Same OT, provider and number: the second copy gets a suffix.
		{ID: uuid.New(), Numero: "F-001", ProviderName: "Naviera Sur", WorkOrderNumber: "25OT001", UploadedFileID: &fileB},
		{ID: uuid.New(), Numero: "M-9", Moneda: "USD"},
	}}
	files := fakeFiles{
		fileA: {ID: fileA, Filename: "scan.PDF"},
		fileB: {ID: fileB, Filename: "scan.pdf"},
	}

	dir := t.TempDir()
	svc := export.NewService(invoices, files)

	items, err := svc.Export(context.Background(), invoice.ListFilter{Search: "25OT001"}, dir)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "25OT001", invoices.filter.Search)
	assert.Equal(t, filepath.Join(dir, "25OT001_Naviera_Sur_F-001.pdf"), items[0].FilePath)
	assert.Equal(t, filepath.Join(dir, "25OT001_Naviera_Sur_F-001_2.pdf"), items[1].FilePath)
	assert.Empty(t, items[2].FilePath)

	data, err := os.ReadFile(items[0].FilePath)
	require.NoError(t, err)
	assert.Equal(t, "pdf:scan.PDF", string(data))

	summary := svc.Summary(items)
	assert.Contains(t, summary, "* 2025-06-03 | 25OT001 | Naviera Sur | F-001 | 100.00 USD | pendiente 60.00 | 25OT001_Naviera_Sur_F-001.pdf")
	assert.Contains(t, summary, "sin OT")
	assert.Contains(t, summary, "Sin documento")
}

func TestService_ExportMissingDocument(t *testing.T) {
	missing := uuid.New()
	invoices := &fakeInvoices{list: []*invoice.Invoice{{ID: uuid.New(), UploadedFileID: &missing}}}

	_, err := export.NewService(invoices, fakeFiles{}).Export(context.Background(), invoice.ListFilter{}, t.TempDir())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
