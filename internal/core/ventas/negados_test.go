package ventas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ventas-service/internal/core/ventas"
	"ventas-service/internal/domain"
)

func newTestService() ventas.Service {
	return ventas.NewService(ventas.Params{TaxFactor: 1.16, ParetoThreshold: 0.8})
}

func testPrecios() domain.PriceSource {
	return domain.PriceSource{
		Entries: []domain.PriceEntry{
			{ProductCode: "100", Price: 50, Description: "TORNILLO"},
			{ProductCode: "200", Price: 20, Description: "TUERCA"},
			{ProductCode: "300", Price: 0, Description: "SIN PRECIO"},
		},
	}
}

func TestValueNegados_ValuesAndBreakdown(t *testing.T) {
	svc := newTestService()
	negados := domain.NegadosSource{Lines: []domain.DeniedLine{
		{VendorCode: "7", ProductCode: "100", Quantity: 2}, // 100
		{VendorCode: "7", ProductCode: "200", Quantity: 1}, // 20
		{VendorCode: "9", ProductCode: "100", Quantity: 1}, // 50
	}}

	result := svc.ValueNegados(negados, testPrecios(), ventas.AllVendors())

	require.True(t, result.Available)
	assert.InDelta(t, 170, result.TotalValue, 1e-9)
	require.Len(t, result.Breakdown, 2)
	assert.Equal(t, "100", result.Breakdown[0].ProductCode, "breakdown must be ordered by descending value")
	assert.InDelta(t, 150, result.Breakdown[0].Value, 1e-9)
	assert.InDelta(t, 150.0/170*100, result.Breakdown[0].PctOfTotal, 1e-9)
	assert.Equal(t, "TORNILLO", result.Breakdown[0].Description)
}

// Scope "all" must yield at least as many valued lines as any explicit
// scope over the same denied set.
func TestValueNegados_AllIsSupersetOfExplicitScope(t *testing.T) {
	svc := newTestService()
	negados := domain.NegadosSource{Lines: []domain.DeniedLine{
		{VendorCode: "7", ProductCode: "100", Quantity: 2},
		{VendorCode: "9", ProductCode: "100", Quantity: 1},
	}}

	all := svc.ValueNegados(negados, testPrecios(), ventas.AllVendors())
	scoped := svc.ValueNegados(negados, testPrecios(), ventas.VendorsByCode("7"))

	assert.GreaterOrEqual(t, all.TotalValue, scoped.TotalValue)
	assert.InDelta(t, 100, scoped.TotalValue, 1e-9)
}

// The empty explicit scope means "nothing", never "everything": an
// unresolvable salesperson mapping yields zero denied value.
func TestValueNegados_EmptyExplicitScopeYieldsZero(t *testing.T) {
	svc := newTestService()
	negados := domain.NegadosSource{Lines: []domain.DeniedLine{
		{VendorCode: "7", ProductCode: "100", Quantity: 2},
	}}

	result := svc.ValueNegados(negados, testPrecios(), ventas.VendorsByCode())

	require.True(t, result.Available)
	assert.Equal(t, 0.0, result.TotalValue)
	assert.Empty(t, result.Breakdown)
}

func TestValueNegados_ScopeNormalizesCodes(t *testing.T) {
	svc := newTestService()
	negados := domain.NegadosSource{Lines: []domain.DeniedLine{
		{VendorCode: "007", ProductCode: "100", Quantity: 1},
	}}

	result := svc.ValueNegados(negados, testPrecios(), ventas.VendorsByCode(" 7.0 "))

	assert.InDelta(t, 50, result.TotalValue, 1e-9)
}

func TestValueNegados_MissingPriceCountsPositiveOnly(t *testing.T) {
	svc := newTestService()
	negados := domain.NegadosSource{Lines: []domain.DeniedLine{
		{VendorCode: "7", ProductCode: "300", Quantity: 4},  // precio 0
		{VendorCode: "7", ProductCode: "999", Quantity: 2},  // sin entrada
		{VendorCode: "7", ProductCode: "999", Quantity: -3}, // descartada
	}}

	result := svc.ValueNegados(negados, testPrecios(), ventas.AllVendors())

	assert.Equal(t, 2, result.MissingPriceCount, "only positive-quantity lines without price count as missing")
	assert.Equal(t, 0.0, result.TotalValue)
	for _, row := range result.Breakdown {
		assert.Equal(t, 0.0, row.PctOfTotal, "pct_of_total must be 0 for every row when the total is 0")
	}
}

func TestValueNegados_IncludeNegativeFlag(t *testing.T) {
	svc := ventas.NewService(ventas.Params{TaxFactor: 1.16, IncludeNegativeNegados: true})
	negados := domain.NegadosSource{Lines: []domain.DeniedLine{
		{VendorCode: "7", ProductCode: "100", Quantity: 2},
		{VendorCode: "7", ProductCode: "100", Quantity: -1},
	}}

	result := svc.ValueNegados(negados, testPrecios(), ventas.AllVendors())

	assert.InDelta(t, 50, result.TotalValue, 1e-9, "negative quantities net against positive demand when opted in")
}

func TestValueNegados_UnavailableSources(t *testing.T) {
	svc := newTestService()

	r1 := svc.ValueNegados(domain.NegadosSource{Reason: "no encontré cve_art"}, testPrecios(), ventas.AllVendors())
	assert.False(t, r1.Available)
	assert.Contains(t, r1.Reason, "NEGADOS")

	r2 := svc.ValueNegados(domain.NegadosSource{}, domain.PriceSource{Reason: "no encontré precio"}, ventas.AllVendors())
	assert.False(t, r2.Available)
	assert.Contains(t, r2.Reason, "PRECIOS")
}

func TestReducePriceList_MaxPriceWins(t *testing.T) {
	reduced := ventas.ReducePriceList(domain.PriceSource{
		Entries: []domain.PriceEntry{
			{ProductCode: "100", Price: 10, Description: "BARATO"},
			{ProductCode: "100", Price: 30, Description: "CARO"},
			{ProductCode: "0100", Price: 20, Description: "MEDIO"},
		},
	})

	require.Len(t, reduced, 1)
	entry := reduced["100"]
	assert.InDelta(t, 30, entry.Price, 1e-9)
	assert.Equal(t, "CARO", entry.Description, "description follows price-descending order")
}

func TestReducePriceList_FirstNonEmptyDescription(t *testing.T) {
	reduced := ventas.ReducePriceList(domain.PriceSource{
		Entries: []domain.PriceEntry{
			{ProductCode: "100", Price: 30, Description: ""},
			{ProductCode: "100", Price: 10, Description: "RESPALDO"},
		},
	})

	entry := reduced["100"]
	assert.InDelta(t, 30, entry.Price, 1e-9)
	assert.Equal(t, "RESPALDO", entry.Description)
}

// With a tip_pre column present and at least one primary row, only primary
// rows compete for the resolved entry.
func TestReducePriceList_PrimaryTypeRestriction(t *testing.T) {
	reduced := ventas.ReducePriceList(domain.PriceSource{
		HasType: true,
		Entries: []domain.PriceEntry{
			{ProductCode: "100", Price: 99, PriceType: 2},
			{ProductCode: "100", Price: 25, PriceType: 1},
			{ProductCode: "200", Price: 40, PriceType: 2},
		},
	})

	require.Contains(t, reduced, "100")
	assert.InDelta(t, 25, reduced["100"].Price, 1e-9, "the higher non-primary price must lose to the primary row")
	assert.NotContains(t, reduced, "200", "products with no primary row drop out once primary rows exist")
}

func TestReducePriceList_NoPrimaryRowsKeepsAll(t *testing.T) {
	reduced := ventas.ReducePriceList(domain.PriceSource{
		HasType: true,
		Entries: []domain.PriceEntry{
			{ProductCode: "100", Price: 99, PriceType: 2},
			{ProductCode: "200", Price: 40, PriceType: 3},
		},
	})

	assert.Len(t, reduced, 2)
}
