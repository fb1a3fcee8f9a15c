// Package overview condenses the projected document set into a short
// operator-facing digest, produced after every re-index pass.
package overview

import (
	"fmt"

	"warehouse-rag/internal/domain"
	"warehouse-rag/internal/projector"
)

// Summary holds aggregate status counts for the current document set.
type Summary struct {
	Total        int
	OutOfStock   int
	CriticalLow  int
	LowStock     int
	Expired      int
	ExpiringSoon int
	HighDemand   int
	HighPriority int
}

// Summarize aggregates classification labels across the document set.
func Summarize(docs []domain.DerivedDocument) Summary {
	var s Summary
	s.Total = len(docs)
	for _, d := range docs {
		switch d.StockStatus {
		case projector.StockOut:
			s.OutOfStock++
		case projector.StockCritical:
			s.CriticalLow++
		case projector.StockLow:
			s.LowStock++
		}
		switch d.ExpiryStatus {
		case projector.ExpiryExpired:
			s.Expired++
		case projector.ExpirySoon:
			s.ExpiringSoon++
		}
		if d.DemandStatus == projector.DemandHigh {
			s.HighDemand++
		}
		if d.Priority == projector.PriorityHigh {
			s.HighPriority++
		}
	}
	return s
}

// String renders the summary as a single status line.
func (s Summary) String() string {
	return fmt.Sprintf(
		"%d products | %d out of stock | %d critical | %d low | %d expired | %d expiring soon | %d high priority",
		s.Total, s.OutOfStock, s.CriticalLow, s.LowStock, s.Expired, s.ExpiringSoon, s.HighPriority,
	)
}
