package textextract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/textextract"
)

const invoiceXML = `<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" Folio="F-123" Total="1500.00">
  <cfdi:Emisor Rfc="MSC010101AAA" Nombre="Naviera Ejemplo"/>
  <cfdi:Conceptos>
    <cfdi:Concepto Descripcion="Flete maritimo MBL MEDU1234567"/>
  </cfdi:Conceptos>
  <Adenda><NumeroOT>25OT014</NumeroOT><Contenedor>MSCU1234567</Contenedor></Adenda>
</cfdi:Comprobante>`

func TestExtract_XML(t *testing.T) {
	res := textextract.Extract([]byte(invoiceXML), "application/xml", "factura.xml")
	require.False(t, res.Failed(), res.Detail)

	assert.Contains(t, res.Text, "25OT014")
	assert.Equal(t, "MSCU1234567", res.XML.First("contenedor"))
	assert.Equal(t, []string{"F-123"}, res.XML.Attr("Comprobante", "Folio"))
	assert.Equal(t, []string{"MSC010101AAA"}, res.XML.Attr("emisor", "rfc"))
}

func TestExtract_JSON(t *testing.T) {
	payload := `{"factura":{"numero":"F-77","monto":1200.5,"contenedores":["MSCU1234567","TGHU7654321"]},"nota":null}`

	res := textextract.Extract([]byte(payload), "", "factura.json")
	require.False(t, res.Failed(), res.Detail)

	assert.Contains(t, res.Text, "factura.numero: F-77")
	assert.Contains(t, res.Text, "factura.contenedores.1: TGHU7654321")
	assert.NotContains(t, res.Text, "nota")
}

func TestExtract_Text(t *testing.T) {
	res := textextract.Extract([]byte("FACTURA F-1\n\nTOTAL 100,00\n"), "text/plain; charset=utf-8", "f.txt")
	require.False(t, res.Failed())

	assert.Len(t, res.Blocks, 2)
	assert.Equal(t, "TOTAL 100,00", res.Blocks[1].Text)
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		mime     string
		filename string
		want     textextract.ErrorKind
	}{
		{"Unsupported", []byte("GIF89a"), "image/gif", "logo.gif", textextract.ErrUnsupported},
		{"CorruptPDF", []byte("not a pdf at all"), "application/pdf", "f.pdf", textextract.ErrCorrupt},
		{"InvalidJSON", []byte("{nope"), "application/json", "f.json", textextract.ErrCorrupt},
		{"EmptyText", []byte("   \n  "), "text/plain", "f.txt", textextract.ErrNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := textextract.Extract(tt.data, tt.mime, tt.filename)
			assert.Equal(t, tt.want, res.Kind)
			assert.Empty(t, res.Text)
		})
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, textextract.IsSupported("Factura.PDF"))
	assert.True(t, textextract.IsSupported("cfdi.xml"))
	assert.False(t, textextract.IsSupported("foto.jpg"))
	assert.False(t, textextract.IsSupported("sin_extension"))
}
