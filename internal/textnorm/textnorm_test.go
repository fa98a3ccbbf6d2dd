package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/forwarder/internal/textnorm"
)

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Acme  Logística S.A.", "ACME LOGISTICA S.A"},
		{"  beta   importaciones;", "BETA IMPORTACIONES"},
		{"Comercial Ñandú,.", "COMERCIAL NANDU"},
		{"ACME", "ACME"},
		{"Beta S.A. ;", "BETA S.A"},
		{"Acme , .", "ACME"},
		{"Gamma. ,", "GAMMA"},
		{"Delta ;", "DELTA"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := textnorm.Name(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, textnorm.Name(got), "normalization must be idempotent")
		})
	}
}

func TestHeader(t *testing.T) {
	assert.Equal(t, "n ot", textnorm.Header("N° OT"))
	assert.Equal(t, "operacion", textnorm.Header(" Operación "))
	assert.Equal(t, "contenedor es", textnorm.Header("Contenedor(es)"))
}

func TestCode(t *testing.T) {
	assert.Equal(t, "FLETE_MARITIMO", textnorm.Code(" flete marítimo "))
	assert.Equal(t, "CARGOS_NAVIERA", textnorm.Code("cargos-naviera"))
	assert.Equal(t, "THC", textnorm.Code("THC"))
}
