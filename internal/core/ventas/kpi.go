package ventas

import "ventas-service/internal/domain"

// ComputeKPIs derives the scalar indicators from the territorial aggregates
// and the scoped customer base. Every ratio guards its denominator: an empty
// selection yields 0, never NaN. UniqueProducts is nil when the sales sheet
// had no recognizable product column — "not determined" must stay
// distinguishable from "no products sold".
func ComputeKPIs(agg []domain.CustomerSales, scoped []domain.Customer, filtered []domain.SalesLine, hasProductColumn bool) domain.KPIBundle {
	var total float64
	withSale := make(map[string]bool, len(agg))
	for _, r := range agg {
		total += r.NetValue
		withSale[r.CustomerCode] = true
	}

	assigned := make(map[string]bool, len(scoped))
	for _, c := range scoped {
		assigned[NormalizeCode(c.Code)] = true
	}

	kpis := domain.KPIBundle{
		TotalNetValue:     total,
		CustomersWithSale: len(withSale),
		AssignedCustomers: len(assigned),
	}
	if kpis.CustomersWithSale > 0 {
		kpis.AvgTicket = total / float64(kpis.CustomersWithSale)
	}
	if kpis.AssignedCustomers > 0 {
		kpis.CoveragePct = float64(kpis.CustomersWithSale) / float64(kpis.AssignedCustomers) * 100
	}

	if hasProductColumn {
		products := make(map[string]bool)
		for _, ln := range filtered {
			if code := NormalizeCode(ln.ProductCode); code != "" {
				products[code] = true
			}
		}
		n := len(products)
		kpis.UniqueProducts = &n
	}
	return kpis
}
