package domain

// DateLayout is the calendar date format used throughout the dataset.
const DateLayout = "2006-01-02"

// Dataset column names, in header order.
const (
	ColProductID         = "ProductID"
	ColProductName       = "ProductName"
	ColLocation          = "Location"
	ColCurrentStock      = "CurrentStock"
	ColLastSoldDate      = "LastSoldDate"
	ColExpiryDate        = "ExpiryDate"
	ColSalesLastMonth    = "SalesLastMonth"
	ColTotalSales        = "TotalSales"
	ColFactoryDistanceKM = "FactoryDistanceKM"
)

// Columns is the canonical dataset header.
var Columns = []string{
	ColProductID,
	ColProductName,
	ColLocation,
	ColCurrentStock,
	ColLastSoldDate,
	ColExpiryDate,
	ColSalesLastMonth,
	ColTotalSales,
	ColFactoryDistanceKM,
}

// InventoryRecord is one row of the warehouse dataset. ProductID is unique
// across the store at any instant. Dates are stored as YYYY-MM-DD strings and
// parsed at projection time so a bad date degrades one label, not the row.
type InventoryRecord struct {
	ProductID         int
	ProductName       string
	Location          string
	CurrentStock      int
	LastSoldDate      string
	ExpiryDate        string
	SalesLastMonth    int
	TotalSales        int
	FactoryDistanceKM int
}

// DerivedDocument is the status-annotated text rendering of one record.
// It is a pure function of the record and a reference date; it is regenerated
// whenever the owning record changes and never mutated independently.
type DerivedDocument struct {
	ProductID      int
	StockStatus    string
	ExpiryStatus   string
	DemandStatus   string
	DistanceStatus string
	Priority       string
	Text           string
}

// Chunk is a bounded-length slice of a derived document's text, the unit of
// embedding. Index preserves per-document chunk order.
type Chunk struct {
	ProductID int
	Index     int
	Text      string
}

// SearchResult is a matching chunk with its relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Query correlates one incoming question with its eventual answer.
type Query struct {
	ID       string
	Question string
	Answer   string
}

// UpdateCommand is the parsed form of a natural-language mutation command.
// Fields maps recognized dataset columns to the extracted raw values.
// It exists only for the duration of one apply operation.
type UpdateCommand struct {
	Raw          string
	ProductID    int
	HasProductID bool
	TargetName   string
	Fields       map[string]string
}

// HasTarget reports whether the command carries any record selector.
func (c UpdateCommand) HasTarget() bool {
	return c.HasProductID || c.TargetName != ""
}

// UpdateResult describes a successfully applied command.
type UpdateResult struct {
	ProductID     int
	AppliedFields map[string]string
	DroppedFields []string
	Message       string
}
