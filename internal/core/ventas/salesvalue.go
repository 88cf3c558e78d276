package ventas

import "ventas-service/internal/domain"

// DeriveNetValues computes the pre-tax value for every line of a sales
// batch. The shape decision is batch-level, not row-level: if any line in
// the batch carries a nonzero gross total, the whole batch is total-bearing
// and every line values at total/taxFactor — a legitimately zero total must
// stay zero rather than fall back to quantity × unit value while its
// siblings use the total formula. A batch with neither shape populated
// yields zero for every line.
func DeriveNetValues(lines []domain.SalesLine, taxFactor float64) {
	totalBearing := false
	for i := range lines {
		if lines[i].GrossTotal != 0 {
			totalBearing = true
			break
		}
	}

	for i := range lines {
		if totalBearing {
			if taxFactor != 0 {
				lines[i].NetValue = lines[i].GrossTotal / taxFactor
			} else {
				lines[i].NetValue = lines[i].GrossTotal
			}
		} else {
			lines[i].NetValue = lines[i].Quantity * lines[i].UnitValue
		}
	}
}
