// Package projector renders inventory records into status-annotated text
// documents. Projection is a pure function of the record and a reference
// date, so identical inputs always produce identical documents.
package projector

import (
	"fmt"
	"strings"
	"time"

	"warehouse-rag/internal/domain"
)

// Classification labels. The rendered text embeds these verbatim so
// retrieval can match on either raw numbers or classification words.
const (
	StockOut      = "OUT OF STOCK"
	StockCritical = "CRITICAL LOW STOCK"
	StockLow      = "LOW STOCK"
	StockAdequate = "ADEQUATE STOCK"

	ExpiryExpired   = "EXPIRED"
	ExpirySoon      = "EXPIRES SOON - URGENT"
	ExpiryThisMonth = "EXPIRES THIS MONTH"
	ExpiryFresh     = "FRESH"
	ExpiryUnknown   = "UNKNOWN EXPIRY"

	DemandHigh   = "HIGH DEMAND"
	DemandMedium = "MEDIUM DEMAND"
	DemandLow    = "LOW DEMAND"
	DemandNone   = "NO RECENT SALES"

	DistanceClose    = "CLOSE TO FACTORY"
	DistanceModerate = "MODERATE DISTANCE"
	DistanceFar      = "FAR FROM FACTORY"

	PriorityHigh   = "HIGH PRIORITY"
	PriorityNormal = "NORMAL PRIORITY"
)

// StockStatus classifies the current stock level.
func StockStatus(stock int) string {
	switch {
	case stock == 0:
		return StockOut
	case stock < 10:
		return StockCritical
	case stock < 50:
		return StockLow
	default:
		return StockAdequate
	}
}

// ExpiryStatus classifies an expiry date against the reference date.
// An unparseable date degrades to ExpiryUnknown rather than failing.
func ExpiryStatus(expiryDate string, referenceDate time.Time) string {
	expiry, err := time.Parse(domain.DateLayout, expiryDate)
	if err != nil {
		return ExpiryUnknown
	}
	days := daysBetween(referenceDate, expiry)
	switch {
	case days < 0:
		return ExpiryExpired
	case days <= 7:
		return ExpirySoon
	case days <= 30:
		return ExpiryThisMonth
	default:
		return ExpiryFresh
	}
}

// DemandStatus classifies last month's sales volume.
func DemandStatus(salesLastMonth int) string {
	switch {
	case salesLastMonth > 100:
		return DemandHigh
	case salesLastMonth > 50:
		return DemandMedium
	case salesLastMonth > 0:
		return DemandLow
	default:
		return DemandNone
	}
}

// DistanceStatus classifies the distance to the factory.
func DistanceStatus(km int) string {
	switch {
	case km <= 5:
		return DistanceClose
	case km <= 15:
		return DistanceModerate
	default:
		return DistanceFar
	}
}

// Project converts one record into its derived document. Every field value
// and every derived label appears verbatim in the rendered text.
func Project(rec domain.InventoryRecord, referenceDate time.Time) domain.DerivedDocument {
	stock := StockStatus(rec.CurrentStock)
	expiry := ExpiryStatus(rec.ExpiryDate, referenceDate)
	demand := DemandStatus(rec.SalesLastMonth)
	distance := DistanceStatus(rec.FactoryDistanceKM)

	priority := PriorityNormal
	if stock == StockCritical || stock == StockOut || expiry == ExpirySoon {
		priority = PriorityHigh
	}

	text := fmt.Sprintf(`Product Information:
Product ID: %d
Product Name: %s
Location: %s
Current Stock: %d units (%s)
Last Sold Date: %s
Expiry Date: %s (%s)
Sales Last Month: %d units (%s)
Total Sales: %d units
Factory Distance: %d km (%s)
Status Summary: %s, %s, %s
Priority: %s`,
		rec.ProductID,
		rec.ProductName,
		rec.Location,
		rec.CurrentStock, stock,
		rec.LastSoldDate,
		rec.ExpiryDate, expiry,
		rec.SalesLastMonth, demand,
		rec.TotalSales,
		rec.FactoryDistanceKM, distance,
		stock, expiry, demand,
		priority,
	)

	return domain.DerivedDocument{
		ProductID:      rec.ProductID,
		StockStatus:    stock,
		ExpiryStatus:   expiry,
		DemandStatus:   demand,
		DistanceStatus: distance,
		Priority:       priority,
		Text:           strings.TrimSpace(text),
	}
}

// ProjectAll projects every record against the same reference date.
func ProjectAll(records []domain.InventoryRecord, referenceDate time.Time) []domain.DerivedDocument {
	docs := make([]domain.DerivedDocument, len(records))
	for i, rec := range records {
		docs[i] = Project(rec, referenceDate)
	}
	return docs
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
