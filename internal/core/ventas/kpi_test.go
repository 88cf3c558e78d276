package ventas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ventas-service/internal/core/ventas"
	"ventas-service/internal/domain"
)

func TestComputeKPIs_CoverageAndTicket(t *testing.T) {
	agg := []domain.CustomerSales{
		{CustomerCode: "7", NetValue: 60},
		{CustomerCode: "8", NetValue: 40},
	}
	scoped := []domain.Customer{{Code: "7"}, {Code: "8"}, {Code: "9"}, {Code: "10"}}
	filtered := []domain.SalesLine{
		{ProductCode: "A"},
		{ProductCode: "A"},
		{ProductCode: "B"},
	}

	kpis := ventas.ComputeKPIs(agg, scoped, filtered, true)

	assert.InDelta(t, 100, kpis.TotalNetValue, 1e-9)
	assert.Equal(t, 2, kpis.CustomersWithSale)
	assert.Equal(t, 4, kpis.AssignedCustomers)
	assert.InDelta(t, 50, kpis.CoveragePct, 1e-9)
	assert.InDelta(t, 50, kpis.AvgTicket, 1e-9)
	require.NotNil(t, kpis.UniqueProducts)
	assert.Equal(t, 2, *kpis.UniqueProducts)
}

// Every ratio is defined as 0 when its denominator is empty.
func TestComputeKPIs_ZeroDenominators(t *testing.T) {
	kpis := ventas.ComputeKPIs(nil, nil, nil, false)

	assert.Equal(t, 0.0, kpis.TotalNetValue)
	assert.Equal(t, 0.0, kpis.CoveragePct)
	assert.Equal(t, 0.0, kpis.AvgTicket)
}

// nil UniqueProducts means the product column never resolved; a resolved
// column with no sales yields a real zero.
func TestComputeKPIs_UniqueProductsNilVsZero(t *testing.T) {
	withoutColumn := ventas.ComputeKPIs(nil, nil, nil, false)
	assert.Nil(t, withoutColumn.UniqueProducts)

	withColumn := ventas.ComputeKPIs(nil, nil, nil, true)
	require.NotNil(t, withColumn.UniqueProducts)
	assert.Equal(t, 0, *withColumn.UniqueProducts)
}

func TestComputeKPIs_DuplicateScopedCodesCountOnce(t *testing.T) {
	scoped := []domain.Customer{{Code: "007"}, {Code: "7"}}

	kpis := ventas.ComputeKPIs(nil, scoped, nil, false)

	assert.Equal(t, 1, kpis.AssignedCustomers)
}
