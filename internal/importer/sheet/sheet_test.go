package sheet_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/forwarder/internal/importer/sheet"
)

func TestParse_CSV(t *testing.T) {
	data := []byte("Reporte de operaciones;;;\n" +
		"N° OT;Cliente;Master BL;Contenedor(es);Observaciones\n" +
		"25OT001;ACME;MBL001;\"MSCU1234567, TGHU7654321\";ok\n" +
		";;;;\n" +
		"25OT002;BETA;MBL002;;\n")

	table, err := sheet.Parse("ots.csv", data)
	require.NoError(t, err)

	assert.Equal(t, sheet.FormatCSV, table.Format)
	assert.True(t, table.Has(sheet.ColContainers))
	assert.False(t, table.Has(sheet.ColProvider))
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, 3, first.Line)
	assert.Equal(t, "25OT001", first.Get(sheet.ColNumber))
	assert.Equal(t, "ACME", first.Get(sheet.ColClient))
	assert.Equal(t, "MSCU1234567, TGHU7654321", first.Get(sheet.ColContainers))
	assert.Equal(t, 5, table.Rows[1].Line)
}

func TestParse_CSVCommaDelimited(t *testing.T) {
	data := []byte("OT,Cliente,Naviera\n25OT003,GAMMA,MAERSK\n")

	table, err := sheet.Parse("ots.csv", data)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "MAERSK", table.Rows[0].Get(sheet.ColProvider))
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"OT", "Cliente", "ETA", "Provisión"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"25OT001", "ACME", 45658, "1.250,50"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := sheet.Parse("ots.xlsx", buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, sheet.FormatExcel, table.Format)
	require.Len(t, table.Rows, 1)

	eta, err := sheet.ParseDate(table.Rows[0].Get(sheet.ColETA))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *eta)
	assert.Equal(t, "1.250,50", table.Rows[0].Get(sheet.ColProvision))
}

func TestParse_Errors(t *testing.T) {
	_, err := sheet.Parse("ots.pdf", []byte("x"))
	assert.Error(t, err)

	_, err = sheet.Parse("ots.csv", []byte("fecha;monto\n01/01/2025;10\n"))
	assert.ErrorIs(t, err, sheet.ErrNoHeader)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"15/03/2025", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"5/3/2025", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2025-03-15", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"45731", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := sheet.ParseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}

	got, err := sheet.ParseDate("")
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = sheet.ParseDate("mañana")
	assert.Error(t, err)
}
