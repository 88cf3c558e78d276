package ventas

import (
	"sort"
	"strings"

	"github.com/schollz/closestmatch"

	"ventas-service/internal/domain"
)

const maxEspeciesPerCustomer = 10

// FilterSales scopes sales lines to the selected salespeople and especies.
// Name matching is on normalized display names so accents and case drift
// between sheets do not split a salesperson in two.
func FilterSales(lines []domain.SalesLine, sel domain.FilterSelection) []domain.SalesLine {
	var names map[string]bool
	if !sel.AllSalespeople {
		names = make(map[string]bool, len(sel.Salespeople))
		for _, n := range sel.Salespeople {
			names[normalizeName(n)] = true
		}
	}
	var especies map[string]bool
	if len(sel.Especies) > 0 {
		especies = make(map[string]bool, len(sel.Especies))
		for _, e := range sel.Especies {
			especies[strings.TrimSpace(e)] = true
		}
	}

	out := make([]domain.SalesLine, 0, len(lines))
	for _, ln := range lines {
		if names != nil && !names[normalizeName(ln.Salesperson)] {
			continue
		}
		if especies != nil && !especies[strings.TrimSpace(ln.Especie)] {
			continue
		}
		out = append(out, ln)
	}
	return out
}

// AggregateByCustomer groups already-filtered sales lines by (customer,
// salesperson), joins the result against the customer base and keeps only
// rows with coordinates — those are the map markers. Up to ten distinct
// especie names per customer are sorted and joined for display. topN > 0
// truncates to the highest-value rows after sorting; 0 keeps everything.
func AggregateByCustomer(lines []domain.SalesLine, customers []domain.Customer, topN int) []domain.CustomerSales {
	byCode := make(map[string]domain.Customer, len(customers))
	for _, c := range customers {
		byCode[NormalizeCode(c.Code)] = c
	}

	type group struct {
		row      domain.CustomerSales
		especies map[string]bool
	}
	groups := make(map[string]*group)
	var order []string

	for _, ln := range lines {
		code := NormalizeCode(ln.CustomerCode)
		key := code + "|" + ln.Salesperson
		g, ok := groups[key]
		if !ok {
			g = &group{
				row: domain.CustomerSales{
					CustomerCode: code,
					Salesperson:  ln.Salesperson,
				},
				especies: make(map[string]bool),
			}
			groups[key] = g
			order = append(order, key)
		}
		g.row.NetValue += ln.NetValue
		g.row.LineCount++
		if e := strings.TrimSpace(ln.Especie); e != "" {
			g.especies[e] = true
		}
	}

	out := make([]domain.CustomerSales, 0, len(order))
	for _, key := range order {
		g := groups[key]
		cust, ok := byCode[g.row.CustomerCode]
		if !ok || !cust.HasGeo {
			continue
		}
		g.row.Name = cust.Name
		g.row.Latitude = cust.Latitude
		g.row.Longitude = cust.Longitude

		names := make([]string, 0, len(g.especies))
		for e := range g.especies {
			names = append(names, e)
		}
		sort.Strings(names)
		if len(names) > maxEspeciesPerCustomer {
			names = names[:maxEspeciesPerCustomer]
		}
		g.row.Especies = strings.Join(names, ", ")

		out = append(out, g.row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NetValue != out[j].NetValue {
			return out[i].NetValue > out[j].NetValue
		}
		return out[i].CustomerCode < out[j].CustomerCode
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// scopeCustomers returns the customers assigned to the selected salespeople,
// or every customer when the selection is "all". A selected name with no
// exact normalized counterpart among customer assignments falls back to the
// closest assigned name, so small drift between the ventas and clientes
// sheets ("J. PEREZ" vs "JUAN PEREZ") still scopes correctly.
func scopeCustomers(customers []domain.Customer, sel domain.FilterSelection) []domain.Customer {
	if sel.AllSalespeople {
		return customers
	}

	assignedKeys := make(map[string]bool)
	var keyOrder []string
	for _, c := range customers {
		k := normalizeName(c.Salesperson)
		if k == "" || assignedKeys[k] {
			continue
		}
		assignedKeys[k] = true
		keyOrder = append(keyOrder, k)
	}

	wanted := make(map[string]bool, len(sel.Salespeople))
	var cm *closestmatch.ClosestMatch
	for _, name := range sel.Salespeople {
		k := normalizeName(name)
		if k == "" {
			continue
		}
		if assignedKeys[k] {
			wanted[k] = true
			continue
		}
		if len(keyOrder) == 0 {
			continue
		}
		if cm == nil {
			cm = closestmatch.New(keyOrder, []int{3, 4})
		}
		if match := cm.Closest(k); match != "" {
			wanted[match] = true
		}
	}

	out := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		if wanted[normalizeName(c.Salesperson)] {
			out = append(out, c)
		}
	}
	return out
}

// NoSaleCustomers is the complement of the aggregate output inside the
// scoped customer base: assigned customers with no sale under the current
// filters. maxRows > 0 caps the list; 0 keeps everything.
func NoSaleCustomers(scoped []domain.Customer, sold []domain.CustomerSales, maxRows int) []domain.Customer {
	soldCodes := make(map[string]bool, len(sold))
	for _, r := range sold {
		soldCodes[NormalizeCode(r.CustomerCode)] = true
	}

	out := make([]domain.Customer, 0, len(scoped))
	for _, c := range scoped {
		if soldCodes[NormalizeCode(c.Code)] {
			continue
		}
		out = append(out, c)
		if maxRows > 0 && len(out) >= maxRows {
			break
		}
	}
	return out
}
