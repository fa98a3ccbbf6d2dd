package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/importer/sheet"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
)

func parseOne(t *testing.T, lines string) sheet.Row {
	t.Helper()

	table, err := sheet.Parse("ots.csv", []byte(lines))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	return table.Rows[0]
}

func TestParseRow(t *testing.T) {
	row := parseOne(t, "OT;Cliente;Operacion;HBL;Contenedores;ETA;Provision\n"+
		"25-ot-007; acme   sa ;Importacion;HBL1, HBL2;MSCU1234567 TGHU7654321;15/07/2025;1500.50\n")

	rec, skip, warnings := parseRow(row, 25)
	require.Empty(t, skip)
	assert.Empty(t, warnings)

	assert.Equal(t, "25OT007", rec.Number)
	assert.Equal(t, "acme sa", rec.Client)
	assert.Equal(t, workorder.TipoImport, rec.TipoOperacion)
	assert.Equal(t, []string{"HBL1", "HBL2"}, rec.HouseBLs)
	assert.Equal(t, []string{"MSCU1234567", "TGHU7654321"}, rec.Containers)
	require.NotNil(t, rec.ETA)
	assert.Equal(t, "2025-07-15", formatDate(rec.ETA))
	require.NotNil(t, rec.Provision)
	assert.Equal(t, "1500.50", rec.Provision.StringFixed(2))
}

func TestParseRow_Warnings(t *testing.T) {
	row := parseOne(t, "OT;Cliente;Operacion;Provision\n25OT001;Acme;Cabotaje;-10\n")

	rec, skip, warnings := parseRow(row, 25)
	require.Empty(t, skip)

	assert.Empty(t, rec.TipoOperacion)
	assert.Nil(t, rec.Provision)
	assert.Len(t, warnings, 2)
}

func TestRecord_HashIgnoresCase(t *testing.T) {
	a := Record{Number: "25OT001", Client: "Acme SA"}
	b := Record{Number: "25OT001", Client: "ACME  SA"}
	c := Record{Number: "25OT001", Client: "Acme SA", MasterBL: "MBL1"}

	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
}
