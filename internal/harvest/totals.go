package harvest

import (
	"sort"

	"github.com/stwalsh4118/pomar/internal/models"
)

// SortChronologically orders loads by date, then by insertion order.
func SortChronologically(loads []models.Load) {
	sort.SliceStable(loads, func(i, j int) bool {
		if loads[i].Data != loads[j].Data {
			return loads[i].Data < loads[j].Data
		}
		return loads[i].Seq < loads[j].Seq
	})
}

// RunningTotals returns, per load id, the season-to-date box count: the sum
// of qte_caixa over every load at or before it in chronological order.
// The input slice is not modified.
func RunningTotals(loads []models.Load) map[string]float64 {
	ordered := make([]models.Load, len(loads))
	copy(ordered, loads)
	SortChronologically(ordered)

	totals := make(map[string]float64, len(ordered))
	var sum float64
	for _, l := range ordered {
		sum += l.QteCaixa
		totals[l.ID] = sum
	}
	return totals
}
