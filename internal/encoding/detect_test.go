package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/encoding"
)

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "N° OT;Cliente;Operación\n25OT001;Logística Ñandú;import\n"
	r, err := encoding.NewUTF8Reader(bytes.NewReader([]byte(input)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	// "Operación;Años\n" in Windows-1252: ó = 0xF3, ñ = 0xF1
	latin1Bytes := []byte{
		'O', 'p', 'e', 'r', 'a', 'c', 'i', 0xF3, 'n', ';',
		'A', 0xF1, 'o', 's', '\n',
	}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Operación;Años\n", string(got))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte("Contenedor;MBL\n")
	input := append(bom, content...)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Contenedor;MBL\n", string(got))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	input := []byte{0xFF, 0xFE, 'O', 0, 'T', 0, '\n', 0}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "OT\n", string(got))
}

func TestDetect(t *testing.T) {
	assert.Equal(t, encoding.CharsetUTF8, encoding.Detect([]byte("plain ascii")))
	assert.Equal(t, encoding.CharsetUTF8BOM, encoding.Detect([]byte{0xEF, 0xBB, 0xBF, 'a'}))
	assert.Equal(t, encoding.CharsetUTF16BE, encoding.Detect([]byte{0xFE, 0xFF, 0, 'a'}))
}

func TestDecodeString(t *testing.T) {
	got, err := encoding.DecodeString([]byte("FACTURA N° 123"))
	require.NoError(t, err)
	assert.Equal(t, "FACTURA N° 123", got)
}
