package loader_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ventas-service/internal/loader"
)

func TestLoadClientes_Basic(t *testing.T) {
	csv := "cve_cte,Nombre Cliente,vendedor,latitud,longitud\n" +
		"7,ABARROTES LUPITA,PEREZ,19.4326,-99.1332\n" +
		"8,MISCELANEA SOL,GOMEZ,,\n" +
		",SIN CLAVE,PEREZ,1,1\n"

	customers, err := loader.LoadClientes(strings.NewReader(csv), "clientes.csv")

	require.NoError(t, err)
	require.Len(t, customers, 2, "rows without a customer code are dropped")

	assert.Equal(t, "7", customers[0].Code)
	assert.Equal(t, "ABARROTES LUPITA", customers[0].Name)
	assert.Equal(t, "PEREZ", customers[0].Salesperson)
	assert.True(t, customers[0].HasGeo)
	assert.InDelta(t, 19.4326, customers[0].Latitude, 1e-9)

	assert.False(t, customers[1].HasGeo, "missing coordinates keep the customer but flag it geo-less")
}

func TestLoadClientes_CommaDecimalCoordinates(t *testing.T) {
	csv := "cve_cte,cliente,vendedor,latitud,longitud\n" +
		"7,LUPITA,PEREZ,\"19,4326\",\"-99,1332\"\n"

	customers, err := loader.LoadClientes(strings.NewReader(csv), "clientes.csv")

	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.True(t, customers[0].HasGeo)
	assert.InDelta(t, 19.4326, customers[0].Latitude, 1e-9)
	assert.InDelta(t, -99.1332, customers[0].Longitude, 1e-9)
}

func TestLoadVentas_ColumnResolutionAndParsing(t *testing.T) {
	csv := "\uFEFFCVE_CTE,Vendedor,cve_vnd,fecha,especie,total,cantidad,importe,CVE_ART\n" +
		"007,PEREZ,05,15/03/2026,RES,\"$1,160.00\",2,580,A-1\n" +
		",,,,,,,,\n" +
		"8,GOMEZ,6,fecha-mala,CERDO,(58),1,58,B2\n"

	batch, err := loader.LoadVentas(strings.NewReader(csv), "ventas.csv")

	require.NoError(t, err)
	assert.True(t, batch.HasVendorCode)
	assert.Equal(t, "cve_art", batch.ProductColumn, "header matching is case-insensitive even under a BOM")
	require.Len(t, batch.Lines, 2, "blank rows are skipped")

	first := batch.Lines[0]
	assert.Equal(t, "007", first.CustomerCode, "customer codes keep their raw form until the engine normalizes")
	assert.Equal(t, "5", first.VendorCode)
	assert.Equal(t, "A-1", first.ProductCode)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), first.Date)
	assert.InDelta(t, 1160, first.GrossTotal, 1e-9)
	assert.Equal(t, 0.0, first.NetValue, "net values are not derived at load time")

	second := batch.Lines[1]
	assert.True(t, second.Date.IsZero(), "an unparseable date becomes the zero time, not an error")
	assert.InDelta(t, -58, second.GrossTotal, 1e-9, "parenthesized amounts are negative")
}

func TestLoadVentas_NoProductColumn(t *testing.T) {
	csv := "cve_cte,vendedor,total\n7,PEREZ,100\n"

	batch, err := loader.LoadVentas(strings.NewReader(csv), "ventas.csv")

	require.NoError(t, err)
	assert.Empty(t, batch.ProductColumn)
	assert.False(t, batch.HasVendorCode)
	require.Len(t, batch.Lines, 1)
	assert.Empty(t, batch.Lines[0].ProductCode)
}

func TestLoadNegados_Basic(t *testing.T) {
	csv := "cve_vnd,cve_art,(expression)\n05,A-1,3\n6,B2,\"1,5\"\n"

	src := loader.LoadNegados(strings.NewReader(csv), "negados.csv", "(expression)")

	require.Empty(t, src.Reason)
	require.Len(t, src.Lines, 2)
	assert.Equal(t, "5", src.Lines[0].VendorCode)
	assert.Equal(t, "A-1", src.Lines[0].ProductCode)
	assert.InDelta(t, 3, src.Lines[0].Quantity, 1e-9)
	assert.InDelta(t, 1.5, src.Lines[1].Quantity, 1e-9)
}

func TestLoadNegados_MissingColumnsTagReasons(t *testing.T) {
	noArt := loader.LoadNegados(strings.NewReader("cve_vnd,(expression)\n5,3\n"), "negados.csv", "(expression)")
	assert.Contains(t, noArt.Reason, "cve_art")
	assert.Empty(t, noArt.Lines)

	noQty := loader.LoadNegados(strings.NewReader("cve_vnd,cve_art\n5,A\n"), "negados.csv", "(expression)")
	assert.Contains(t, noQty.Reason, "(expression)")

	noVend := loader.LoadNegados(strings.NewReader("cve_art,(expression)\nA,3\n"), "negados.csv", "(expression)")
	assert.Contains(t, noVend.Reason, "cve_vnd")
}

func TestLoadPrecios_Basic(t *testing.T) {
	csv := "cve_art,precio,descri,tip_pre\nA-1,\"$25.50\",TORNILLO,1\nB2,40,,2\n"

	src := loader.LoadPrecios(strings.NewReader(csv), "precios.csv")

	require.Empty(t, src.Reason)
	assert.True(t, src.HasType)
	require.Len(t, src.Entries, 2)
	assert.Equal(t, "A-1", src.Entries[0].ProductCode)
	assert.InDelta(t, 25.5, src.Entries[0].Price, 1e-9)
	assert.Equal(t, "TORNILLO", src.Entries[0].Description)
	assert.Equal(t, 1, src.Entries[0].PriceType)
}

func TestLoadPrecios_OptionalTypeColumn(t *testing.T) {
	src := loader.LoadPrecios(strings.NewReader("cve_art,precio\nA,10\n"), "precios.csv")

	assert.Empty(t, src.Reason)
	assert.False(t, src.HasType)
}

func TestLoadPrecios_MissingRequiredColumns(t *testing.T) {
	src := loader.LoadPrecios(strings.NewReader("cve_art,descri\nA,X\n"), "precios.csv")

	assert.Contains(t, src.Reason, "cve_art/precio")
	assert.Empty(t, src.Entries)
}

func TestReadRows_UnsupportedExtension(t *testing.T) {
	_, err := loader.ReadRows(strings.NewReader("x"), "datos.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), ".pdf")
}

func TestReadRows_Latin1CSV(t *testing.T) {
	// "PÉREZ" con É en latin1 (0xC9)
	raw := append([]byte("vendedor\nP"), 0xC9)
	raw = append(raw, []byte("REZ\n")...)

	rows, err := loader.ReadRows(bytes.NewReader(raw), "datos.csv")

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PÉREZ", rows[1][0])
}

func TestReadRows_RaggedCSV(t *testing.T) {
	rows, err := loader.ReadRows(strings.NewReader("a,b,c\n1,2\n"), "datos.csv")

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[1], 2, "short rows pass through; missing cells read as empty downstream")
}
