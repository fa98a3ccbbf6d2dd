package blob_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/blob"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Factura Nº 12.PDF", "Factura_N_12.pdf"},
		{"../../etc/passwd", "passwd"},
		{"C:\\tmp\\nota credito.xml", "nota_credito.xml"},
		{"   .pdf", "file.pdf"},
		{"report.tar.gz", "report_tar.gz"},
		{"weird.p$f", "weird"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, blob.SanitizeName(tt.input))
		})
	}
}

func TestInvoicePath(t *testing.T) {
	at := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "invoices/2025/06/F-001.pdf", blob.InvoicePath(at, "F-001.pdf"))
	assert.Equal(t, "supplier_payments/2025/06/transferencia.pdf", blob.ReceiptPath(at, "transferencia.pdf"))
}

func TestLocal_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := blob.NewLocal(t.TempDir(), "/api/v1/files/")

	key, err := store.Put(ctx, "invoices/2025/06/factura 1.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "invoices/2025/06/factura_1.pdf", key)

	url, err := store.URL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/files/invoices/2025/06/factura_1.pdf", url)

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "%PDF-1.4", string(body))

	require.NoError(t, store.Delete(ctx, key))

	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestLocal_NameClashGetsSuffix(t *testing.T) {
	ctx := context.Background()
	store := blob.NewLocal(t.TempDir(), "/files")

	first, err := store.Put(ctx, "invoices/2025/06/a.pdf", strings.NewReader("one"))
	require.NoError(t, err)

	second, err := store.Put(ctx, "invoices/2025/06/a.pdf", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, "invoices/2025/06/a_"))
	assert.True(t, strings.HasSuffix(second, ".pdf"))
}

func TestLocal_DeleteMissingIsNoop(t *testing.T) {
	store := blob.NewLocal(t.TempDir(), "/files")
	assert.NoError(t, store.Delete(context.Background(), "invoices/none.pdf"))
}
