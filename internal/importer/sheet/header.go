package sheet

import (
	"github.com/MrJamesThe3rd/forwarder/internal/textnorm"
)

// Column is a canonical work-order column.
type Column string

const (
	ColNumber     Column = "ot"
	ColClient     Column = "cliente"
	ColProvider   Column = "proveedor"
	ColOperation  Column = "operacion"
	ColMasterBL   Column = "master_bl"
	ColHouseBL    Column = "house_bl"
	ColContainers Column = "contenedores"
	ColETD        Column = "etd"
	ColETA        Column = "eta"
	ColProvision  Column = "provision"
)

// aliases lists accepted header spellings per column, already in
// textnorm.Header form.
var aliases = map[Column][]string{
	ColNumber:     {"ot", "n ot", "no ot", "nro ot", "numero ot", "orden", "orden de trabajo"},
	ColClient:     {"cliente", "client", "razon social"},
	ColProvider:   {"proveedor", "naviera", "linea", "carrier"},
	ColOperation:  {"operacion", "tipo operacion", "tipo", "import export"},
	ColMasterBL:   {"mbl", "master bl", "master", "bl master"},
	ColHouseBL:    {"hbl", "house bl", "house", "hbls", "bl house"},
	ColContainers: {"contenedor", "contenedores", "contenedor es", "container", "containers", "cntr"},
	ColETD:        {"etd", "fecha salida", "salida"},
	ColETA:        {"eta", "fecha llegada", "llegada"},
	ColProvision:  {"provision", "provision total", "costo estimado"},
}

var lookup = func() map[string]Column {
	m := map[string]Column{}
	for col, names := range aliases {
		for _, n := range names {
			m[n] = col
		}
	}

	return m
}()

// headerScan bounds how far down the header row may sit.
const headerScan = 20

// detectHeader finds the first row naming the OT column plus at least one
// other known column.
func detectHeader(rows [][]string) (int, map[Column]int, bool) {
	for i, row := range rows {
		if i >= headerScan {
			break
		}

		idx := map[Column]int{}

		for pos, cell := range row {
			col, ok := lookup[textnorm.Header(cell)]
			if !ok {
				continue
			}

			if _, dup := idx[col]; !dup {
				idx[col] = pos
			}
		}

		if _, ok := idx[ColNumber]; ok && len(idx) >= 2 {
			return i, idx, true
		}
	}

	return 0, nil, false
}
