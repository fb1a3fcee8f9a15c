package interpreter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-rag/internal/domain"
	"warehouse-rag/internal/store"
)

func newTestInterpreter(t *testing.T) (*Interpreter, *store.CSVStore) {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "inventory.csv"))
	require.NoError(t, s.ReplaceAll([]domain.InventoryRecord{
		{
			ProductID: 11023, ProductName: "WidgetA", Location: "SectionA-Aisle3-Shelf2",
			CurrentStock: 150, LastSoldDate: "2025-09-20", ExpiryDate: "2026-03-15",
			SalesLastMonth: 45, TotalSales: 890, FactoryDistanceKM: 12,
		},
		{
			ProductID: 11024, ProductName: "Electronic Component B", Location: "SectionC-Aisle2-Shelf5",
			CurrentStock: 0, LastSoldDate: "2025-09-18", ExpiryDate: "2027-01-01",
			SalesLastMonth: 120, TotalSales: 2100, FactoryDistanceKM: 3,
		},
	}))
	return New(s), s
}

func TestParse_ProductIDAndStock(t *testing.T) {
	in, _ := newTestInterpreter(t)
	cmd := in.Parse("Update product 11023 stock to 50")
	assert.True(t, cmd.HasProductID)
	assert.Equal(t, 11023, cmd.ProductID)
	assert.Equal(t, map[string]string{domain.ColCurrentStock: "50"}, cmd.Fields)
}

func TestParse_ProductIDVariants(t *testing.T) {
	in, _ := newTestInterpreter(t)
	for _, raw := range []string{
		"update product id 11023 location to SectionB",
		"update product number 11023 location to SectionB",
		"update product #11023 location to SectionB",
		"UPDATE PRODUCT 11023 LOCATION TO SectionB",
	} {
		cmd := in.Parse(raw)
		assert.True(t, cmd.HasProductID, "raw=%q", raw)
		assert.Equal(t, 11023, cmd.ProductID, "raw=%q", raw)
		assert.Equal(t, "SectionB", cmd.Fields[domain.ColLocation], "raw=%q", raw)
	}
}

func TestParse_Rename(t *testing.T) {
	in, _ := newTestInterpreter(t)
	cmd := in.Parse("update product name WidgetA as WidgetB")
	assert.False(t, cmd.HasProductID)
	assert.Equal(t, "WidgetA", cmd.TargetName)
	assert.Equal(t, map[string]string{domain.ColProductName: "WidgetB"}, cmd.Fields)
}

func TestParse_MultipleFields(t *testing.T) {
	in, _ := newTestInterpreter(t)
	cmd := in.Parse("update product 11023 stock to 75 and expiry date to 2026-06-30")
	assert.Equal(t, 11023, cmd.ProductID)
	assert.Equal(t, "75", cmd.Fields[domain.ColCurrentStock])
	assert.Equal(t, "2026-06-30", cmd.Fields[domain.ColExpiryDate])
}

func TestParse_DateAndDistanceFields(t *testing.T) {
	in, _ := newTestInterpreter(t)
	cmd := in.Parse("update product 11024 last sold date to 2025-09-22")
	assert.Equal(t, "2025-09-22", cmd.Fields[domain.ColLastSoldDate])

	cmd = in.Parse("update product 11024 sales last month to 80")
	assert.Equal(t, "80", cmd.Fields[domain.ColSalesLastMonth])

	cmd = in.Parse("update product 11024 factory distance to 9")
	assert.Equal(t, "9", cmd.Fields[domain.ColFactoryDistanceKM])
}

func TestParse_NamedTarget(t *testing.T) {
	in, _ := newTestInterpreter(t)
	cmd := in.Parse("update Electronic Component B stock to 10")
	assert.False(t, cmd.HasProductID)
	assert.Equal(t, "Electronic Component B", cmd.TargetName)
	assert.Equal(t, "10", cmd.Fields[domain.ColCurrentStock])
}

func TestParse_NoTarget(t *testing.T) {
	in, _ := newTestInterpreter(t)
	cmd := in.Parse("update location to SectionB")
	assert.False(t, cmd.HasTarget())
	assert.Equal(t, "SectionB", cmd.Fields[domain.ColLocation])
}

func TestExecute_AppliesUpdate(t *testing.T) {
	in, s := newTestInterpreter(t)
	res, err := in.Execute("Update product 11023 stock to 50")
	require.NoError(t, err)
	assert.Equal(t, 11023, res.ProductID)
	assert.Contains(t, res.Message, "CurrentStock: 50")

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 50, got[0].CurrentStock)
}

func TestExecute_AmbiguousTarget(t *testing.T) {
	in, _ := newTestInterpreter(t)
	_, err := in.Execute("update location to SectionB")
	assert.ErrorIs(t, err, domain.ErrAmbiguousTarget)

	// "product" alone is a keyword, not a product name.
	_, err = in.Execute("update product stock to 5")
	assert.ErrorIs(t, err, domain.ErrAmbiguousTarget)
}

func TestExecute_TargetNotFound(t *testing.T) {
	in, _ := newTestInterpreter(t)
	_, err := in.Execute("update product 99999 stock to 5")
	assert.ErrorIs(t, err, domain.ErrTargetNotFound)

	_, err = in.Execute("update Nonexistent Thing stock to 5")
	assert.ErrorIs(t, err, domain.ErrTargetNotFound)
}

func TestExecute_NoApplicableFields(t *testing.T) {
	in, s := newTestInterpreter(t)
	_, err := in.Execute("update product 11023 please")
	assert.ErrorIs(t, err, domain.ErrNoApplicableFields)

	// Rejection leaves the data untouched.
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 150, got[0].CurrentStock)
}

func TestExecute_RenameRoundTrip(t *testing.T) {
	in, s := newTestInterpreter(t)
	res, err := in.Execute("update product name WidgetA as WidgetB")
	require.NoError(t, err)
	assert.Equal(t, 11023, res.ProductID)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "WidgetB", got[0].ProductName)
}
