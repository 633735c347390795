package harvest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stwalsh4118/pomar/internal/models"
)

func TestRunningTotals_Sequential(t *testing.T) {
	quantities := []float64{100, 50, 25.5, 0, 10}
	loads := make([]models.Load, len(quantities))
	for i, q := range quantities {
		loads[i] = models.Load{ID: string(rune('a' + i)), Data: models.Millis(int64(i) * 86400000), Seq: int64(i + 1), QteCaixa: q}
	}

	totals := RunningTotals(loads)

	var want float64
	for i, q := range quantities {
		want += q
		assert.Equal(t, want, totals[loads[i].ID], "load %d", i)
	}
}

func TestRunningTotals_OutOfOrderAndTies(t *testing.T) {
	loads := []models.Load{
		{ID: "late", Data: 300, Seq: 1, QteCaixa: 1},
		{ID: "early", Data: 100, Seq: 2, QteCaixa: 10},
		{ID: "tie-second", Data: 200, Seq: 4, QteCaixa: 1000},
		{ID: "tie-first", Data: 200, Seq: 3, QteCaixa: 100},
	}

	totals := RunningTotals(loads)

	assert.Equal(t, map[string]float64{
		"early":      10,
		"tie-first":  110,
		"tie-second": 1110,
		"late":       1111,
	}, totals)
	assert.Equal(t, "late", loads[0].ID, "input must not be reordered")
}

func TestRunningTotals_Empty(t *testing.T) {
	assert.Empty(t, RunningTotals(nil))
}
