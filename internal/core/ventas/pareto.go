package ventas

import (
	"sort"

	"ventas-service/internal/domain"
)

// shareEpsilon absorbs float drift when a cumulative share lands exactly on
// the threshold (0.5 + 0.3 must still count as ≤ 0.8).
const shareEpsilon = 1e-9

// AnalyzePareto sorts (especie, value) pairs by descending value, computes
// cumulative shares and marks the core set: categories whose cumulative
// share stays within the threshold. If the marked set still explains less
// than the threshold, the first boundary-crossing category is pulled in too,
// so the core is never a strict subset that leaves the dominant remainder
// unexplained. A non-positive total degenerates to all-zero shares with
// nothing marked.
func AnalyzePareto(values map[string]float64, threshold float64) []domain.ParetoCategory {
	out := make([]domain.ParetoCategory, 0, len(values))
	var total float64
	for especie, value := range values {
		out = append(out, domain.ParetoCategory{Especie: especie, Value: value})
		total += value
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Especie < out[j].Especie
	})

	if total <= 0 {
		return out
	}

	cumulative := 0.0
	markedShare := 0.0
	lastMarked := -1
	for i := range out {
		out[i].Share = out[i].Value / total
		cumulative += out[i].Share
		out[i].CumulativeShare = cumulative
		if cumulative <= threshold+shareEpsilon {
			out[i].InCoreSet = true
			lastMarked = i
			markedShare = cumulative
		}
	}

	// Boundary rule: the core must always include the category that crosses
	// the threshold when the ≤ pass undershoots it.
	if markedShare < threshold-shareEpsilon && lastMarked+1 < len(out) {
		out[lastMarked+1].InCoreSet = true
	}
	return out
}

// SumByEspecie accumulates net value per especie over sales lines.
func SumByEspecie(lines []domain.SalesLine) map[string]float64 {
	sums := make(map[string]float64)
	for _, ln := range lines {
		especie := ln.Especie
		if especie == "" {
			continue
		}
		sums[especie] += ln.NetValue
	}
	return sums
}

// ParetoGaps reports, for each category in the global core set, the value
// the scoped salesperson moves; entries at or below the floor are the key
// categories that salesperson is not selling, sorted ascending by scoped
// value so the widest gaps come first.
func ParetoGaps(global []domain.ParetoCategory, scoped map[string]float64, floor float64) []domain.ParetoGapEntry {
	var gaps []domain.ParetoGapEntry
	for _, cat := range global {
		if !cat.InCoreSet {
			continue
		}
		sv := scoped[cat.Especie]
		if sv > floor {
			continue
		}
		gaps = append(gaps, domain.ParetoGapEntry{
			Especie:     cat.Especie,
			GlobalValue: cat.Value,
			ScopedValue: sv,
		})
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].ScopedValue != gaps[j].ScopedValue {
			return gaps[i].ScopedValue < gaps[j].ScopedValue
		}
		return gaps[i].Especie < gaps[j].Especie
	})
	return gaps
}
