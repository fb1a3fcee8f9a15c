package projector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-rag/internal/domain"
)

var refDate = time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC)

func TestStockStatus_Boundaries(t *testing.T) {
	tests := []struct {
		stock int
		want  string
	}{
		{0, StockOut},
		{1, StockCritical},
		{9, StockCritical},
		{10, StockLow},
		{49, StockLow},
		{50, StockAdequate},
		{500, StockAdequate},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StockStatus(tt.stock), "stock=%d", tt.stock)
	}
}

func TestExpiryStatus_Boundaries(t *testing.T) {
	day := func(offset int) string {
		return refDate.AddDate(0, 0, offset).Format(domain.DateLayout)
	}
	tests := []struct {
		date string
		want string
	}{
		{day(-1), ExpiryExpired},
		{day(0), ExpirySoon},
		{day(7), ExpirySoon},
		{day(8), ExpiryThisMonth},
		{day(30), ExpiryThisMonth},
		{day(31), ExpiryFresh},
		{"not-a-date", ExpiryUnknown},
		{"", ExpiryUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpiryStatus(tt.date, refDate), "date=%q", tt.date)
	}
}

func TestDemandStatus_Boundaries(t *testing.T) {
	tests := []struct {
		sales int
		want  string
	}{
		{101, DemandHigh},
		{100, DemandMedium},
		{51, DemandMedium},
		{50, DemandLow},
		{1, DemandLow},
		{0, DemandNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DemandStatus(tt.sales), "sales=%d", tt.sales)
	}
}

func TestDistanceStatus_Boundaries(t *testing.T) {
	tests := []struct {
		km   int
		want string
	}{
		{5, DistanceClose},
		{6, DistanceModerate},
		{15, DistanceModerate},
		{16, DistanceFar},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DistanceStatus(tt.km), "km=%d", tt.km)
	}
}

func TestProject_HighPriority(t *testing.T) {
	rec := domain.InventoryRecord{
		ProductID:    11024,
		ProductName:  "Electronic Component B",
		CurrentStock: 0,
		ExpiryDate:   refDate.AddDate(0, 1, 0).Format(domain.DateLayout),
	}
	doc := Project(rec, refDate)
	assert.Equal(t, StockOut, doc.StockStatus)
	assert.Equal(t, PriorityHigh, doc.Priority)

	rec.CurrentStock = 120
	rec.ExpiryDate = refDate.AddDate(0, 0, 3).Format(domain.DateLayout)
	doc = Project(rec, refDate)
	assert.Equal(t, ExpirySoon, doc.ExpiryStatus)
	assert.Equal(t, PriorityHigh, doc.Priority)

	rec.ExpiryDate = refDate.AddDate(0, 2, 0).Format(domain.DateLayout)
	doc = Project(rec, refDate)
	assert.Equal(t, PriorityNormal, doc.Priority)
}

func TestProject_TextContainsFieldsAndLabels(t *testing.T) {
	rec := domain.InventoryRecord{
		ProductID:         11023,
		ProductName:       "Widget A - Heavy Duty",
		Location:          "SectionA-Aisle3-Shelf2",
		CurrentStock:      7,
		LastSoldDate:      "2025-09-20",
		ExpiryDate:        "2025-12-01",
		SalesLastMonth:    130,
		TotalSales:        900,
		FactoryDistanceKM: 4,
	}
	doc := Project(rec, refDate)

	require.Contains(t, doc.Text, "Product ID: 11023")
	assert.Contains(t, doc.Text, "Widget A - Heavy Duty")
	assert.Contains(t, doc.Text, "Current Stock: 7 units (CRITICAL LOW STOCK)")
	assert.Contains(t, doc.Text, "Sales Last Month: 130 units (HIGH DEMAND)")
	assert.Contains(t, doc.Text, "Factory Distance: 4 km (CLOSE TO FACTORY)")
	assert.Contains(t, doc.Text, "Priority: HIGH PRIORITY")
}

func TestProject_Deterministic(t *testing.T) {
	rec := domain.InventoryRecord{
		ProductID:    11030,
		ProductName:  "Office Supply J",
		CurrentStock: 55,
		ExpiryDate:   "2026-01-15",
	}
	a := Project(rec, refDate)
	b := Project(rec, refDate)
	assert.Equal(t, a, b)
}

func TestProjectAll_OrderAndCount(t *testing.T) {
	records := []domain.InventoryRecord{
		{ProductID: 1, CurrentStock: 0},
		{ProductID: 2, CurrentStock: 100},
	}
	docs := ProjectAll(records, refDate)
	require.Len(t, docs, 2)
	assert.Equal(t, 1, docs[0].ProductID)
	assert.Equal(t, 2, docs[1].ProductID)
}
