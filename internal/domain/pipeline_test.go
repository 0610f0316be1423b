package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPipeline() *DispatchPipeline {
	return NewDispatchPipeline(PipelineConfig{
		AllowedCategories:       []Category{CategoryA, CategoryB},
		MinQuantityPerReference: 5,
		MinQuantityPerEAN:       10,
	})
}

func TestDispatchPipeline_FilterByCategory(t *testing.T) {
	pipeline := testPipeline()

	requests := []DispatchRequest{
		{StoreID: "S1", ProductID: "P1", Quantity: 10, Category: CategoryA},
		{StoreID: "S2", ProductID: "P1", Quantity: 10, Category: CategoryC},
		{StoreID: "S3", ProductID: "P1", Quantity: 10, Category: CategoryB},
	}

	m2 := pipeline.FilterByCategory(requests)
	require.Len(t, m2, 2)
	assert.Equal(t, "S1", m2[0].StoreID)
	assert.Equal(t, "S3", m2[1].StoreID)
}

func TestDispatchPipeline_FilterByMinQuantity(t *testing.T) {
	pipeline := testPipeline()

	requests := []DispatchRequest{
		{StoreID: "S1", ProductID: "P1", Quantity: 4, Category: CategoryA},
		{StoreID: "S2", ProductID: "P1", Quantity: 5, Category: CategoryA},
		{StoreID: "S3", ProductID: "P1", Quantity: 20, Category: CategoryA},
	}

	m3 := pipeline.FilterByMinQuantity(requests)
	require.Len(t, m3, 2)
	assert.Equal(t, "S2", m3[0].StoreID)
	assert.Equal(t, "S3", m3[1].StoreID)
}

func TestDispatchPipeline_IntersectTakesElementWiseMin(t *testing.T) {
	pipeline := testPipeline()

	m2 := []DispatchRequest{
		{StoreID: "S1", ProductID: "P1", Quantity: 10, Category: CategoryA},
		{StoreID: "S2", ProductID: "P1", Quantity: 8, Category: CategoryA},
	}
	m3 := []DispatchRequest{
		{StoreID: "S1", ProductID: "P1", Quantity: 6, Category: CategoryA},
		{StoreID: "S3", ProductID: "P1", Quantity: 9, Category: CategoryA},
	}

	m4 := pipeline.Intersect(m2, m3)
	require.Len(t, m4, 1)
	assert.Equal(t, "S1", m4[0].StoreID)
	assert.Equal(t, 6, m4[0].Quantity)

	// Intersected quantity never exceeds either input.
	for _, line := range m4 {
		for _, r := range m2 {
			if r.Key() == line.Key() {
				assert.LessOrEqual(t, line.Quantity, r.Quantity)
			}
		}
		for _, r := range m3 {
			if r.Key() == line.Key() {
				assert.LessOrEqual(t, line.Quantity, r.Quantity)
			}
		}
	}
}

func TestDispatchPipeline_StoreCaps(t *testing.T) {
	pipeline := testPipeline()

	m4 := []DispatchRequest{
		{StoreID: "S1", ProductID: "P1", Quantity: 12, Category: CategoryA},
		{StoreID: "S2", ProductID: "P1", Quantity: 13, Category: CategoryA},
		{StoreID: "S1", ProductID: "P2", Quantity: 7, Category: CategoryA},
	}

	caps := pipeline.StoreCaps(m4)
	// P1 total 25 over min_ean_quantity 10 floors to 2; P2 total 7 floors to 0.
	assert.Equal(t, 2, caps["P1"])
	assert.Equal(t, 0, caps["P2"])
}

func TestDispatchPipeline_FinalSelectionRankedBySales(t *testing.T) {
	pipeline := testPipeline()

	m4 := []DispatchRequest{
		{StoreID: "S1", ProductID: "P1", Quantity: 10, Category: CategoryA},
		{StoreID: "S2", ProductID: "P1", Quantity: 8, Category: CategoryA},
		{StoreID: "S3", ProductID: "P1", Quantity: 7, Category: CategoryA},
	}
	caps := map[string]int{"P1": 2}
	sales := SalesVolumes{
		{ProductID: "P1", StoreID: "S1"}: 50,
		{ProductID: "P1", StoreID: "S3"}: 120,
	}

	m6 := pipeline.FinalSelection(m4, caps, sales)
	require.Len(t, m6, 2)
	// S3 outsells S1; S2 has no history and ranks last.
	assert.Equal(t, "S3", m6[0].StoreID)
	assert.Equal(t, "S1", m6[1].StoreID)
}

func TestDispatchPipeline_FinalSelectionStableTies(t *testing.T) {
	pipeline := testPipeline()

	m4 := []DispatchRequest{
		{StoreID: "S1", ProductID: "P1", Quantity: 10, Category: CategoryA},
		{StoreID: "S2", ProductID: "P1", Quantity: 10, Category: CategoryA},
		{StoreID: "S3", ProductID: "P1", Quantity: 10, Category: CategoryA},
	}
	caps := map[string]int{"P1": 2}

	// No sales history at all: every volume ties at zero, input order wins.
	m6 := pipeline.FinalSelection(m4, caps, SalesVolumes{})
	require.Len(t, m6, 2)
	assert.Equal(t, "S1", m6[0].StoreID)
	assert.Equal(t, "S2", m6[1].StoreID)
}

func TestDispatchPipeline_NoCapMeansNoConstraint(t *testing.T) {
	pipeline := testPipeline()

	m4 := []DispatchRequest{
		{StoreID: "S1", ProductID: "P1", Quantity: 10, Category: CategoryA},
		{StoreID: "S2", ProductID: "P1", Quantity: 8, Category: CategoryA},
	}

	m6 := pipeline.FinalSelection(m4, map[string]int{}, SalesVolumes{})
	assert.Len(t, m6, 2)
}

func TestDispatchPipeline_CapNeverExceeded(t *testing.T) {
	pipeline := testPipeline()

	m4 := []DispatchRequest{
		{StoreID: "S1", ProductID: "P1", Quantity: 12, Category: CategoryA},
		{StoreID: "S2", ProductID: "P1", Quantity: 8, Category: CategoryA},
		{StoreID: "S3", ProductID: "P1", Quantity: 5, Category: CategoryA},
	}
	caps := pipeline.StoreCaps(m4) // total 25 -> cap 2

	m6 := pipeline.FinalSelection(m4, caps, SalesVolumes{})
	assert.LessOrEqual(t, len(m6), 2)
}

func TestDispatchPipeline_NegativeCapKeepsNoLines(t *testing.T) {
	pipeline := testPipeline()

	m4 := []DispatchRequest{
		{StoreID: "S1", ProductID: "P1", Quantity: 10, Category: CategoryA},
		{StoreID: "S2", ProductID: "P1", Quantity: 8, Category: CategoryA},
	}

	// Caps come in as a plain map, so a negative entry must drop the
	// product rather than panic on the slice bound.
	m6 := pipeline.FinalSelection(m4, map[string]int{"P1": -3}, SalesVolumes{})
	assert.Empty(t, m6)
}

func TestDispatchPipeline_Run(t *testing.T) {
	pipeline := testPipeline()

	requests := []DispatchRequest{
		{StoreID: "S1", ProductID: "P1", Quantity: 12, Category: CategoryA},
		{StoreID: "S2", ProductID: "P1", Quantity: 13, Category: CategoryB},
		{StoreID: "S3", ProductID: "P1", Quantity: 3, Category: CategoryA},
		{StoreID: "S4", ProductID: "P1", Quantity: 9, Category: CategoryC},
	}

	calc := pipeline.Run("DISP-1", requests, SalesVolumes{})
	assert.Equal(t, DispatchStatusCompleted, calc.Status)
	assert.Len(t, calc.M2Result, 3) // C category dropped
	assert.Len(t, calc.M3Result, 2) // 3 < min_quantity_per_reference
	assert.Len(t, calc.M4Result, 2) // S1, S2 in both
	assert.Equal(t, 2, calc.M5Caps["P1"])
	assert.Len(t, calc.M6Result, 2)
}
