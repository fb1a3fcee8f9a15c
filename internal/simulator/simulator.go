// Package simulator drives the dataset with randomized warehouse events,
// exercising the atomic-replace write path end to end: every tick loads the
// current records, applies a few events, and replaces the whole file.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"warehouse-rag/internal/domain"
	"warehouse-rag/internal/logger"
)

// Simulator mutates one record store on a fixed interval.
type Simulator struct {
	store    domain.RecordStore
	interval time.Duration
	rng      *rand.Rand
	refDate  func() time.Time
}

// New creates a simulator. A fixed seed makes runs reproducible .
func New(store domain.RecordStore, interval time.Duration, seed int64) *Simulator {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Simulator{
		store:    store,
		interval: interval,
		rng:      rand.New(rand.NewSource(seed)),
		refDate:  time.Now,
	}
}

// EnsureSeeded creates an initial sample inventory when the dataset is
// missing. An existing dataset is left untouched.
func (s *Simulator) EnsureSeeded() error {
	_, err := s.store.Load()
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrDataUnavailable) {
		return err
	}
	logger.Info("no dataset found, seeding sample inventory")
	return s.store.ReplaceAll(s.sampleInventory())
}

// Run applies event batches until the context is canceled.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.step(); err != nil {
				logger.Warn("simulation step failed: %v", err)
			}
		}
	}
}

// step loads the current records, applies 2-5 random events, and persists
// the result atomically.
func (s *Simulator) step() error {
	records, err := s.store.Load()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	events := 2 + s.rng.Intn(4)
	for i := 0; i < events; i++ {
		idx := s.rng.Intn(len(records))
		s.applyEvent(&records[idx])
	}
	return s.store.ReplaceAll(records)
}

func (s *Simulator) applyEvent(rec *domain.InventoryRecord) {
	today := s.refDate().Format(domain.DateLayout)
	switch s.rng.Intn(5) {
	case 0: // sale
		if rec.CurrentStock > 0 {
			sold := 1 + s.rng.Intn(10)
			if sold > rec.CurrentStock {
				sold = rec.CurrentStock
			}
			rec.CurrentStock -= sold
			rec.SalesLastMonth += sold
			rec.TotalSales += sold
			rec.LastSoldDate = today
			logger.Debug("SALE: product %d sold %d units", rec.ProductID, sold)
		}
	case 1: // restock, possibly with a fresh expiry batch
		added := 20 + s.rng.Intn(81)
		rec.CurrentStock += added
		if s.rng.Intn(2) == 0 {
			days := 60 + s.rng.Intn(121)
			rec.ExpiryDate = s.refDate().AddDate(0, 0, days).Format(domain.DateLayout)
		}
		logger.Debug("RESTOCK: product %d added %d units", rec.ProductID, added)
	case 2: // customer return
		if rec.SalesLastMonth > 0 {
			returned := 1 + s.rng.Intn(5)
			if returned > rec.SalesLastMonth {
				returned = rec.SalesLastMonth
			}
			rec.CurrentStock += returned
			rec.SalesLastMonth -= returned
			logger.Debug("RETURN: product %d returned %d units", rec.ProductID, returned)
		}
	case 3: // warehouse move
		sections := []string{"SectionA", "SectionB", "SectionC", "SectionD", "BulkStorage", "ColdStorage"}
		rec.Location = fmt.Sprintf("%s-Aisle%d-Shelf%d",
			sections[s.rng.Intn(len(sections))], 1+s.rng.Intn(6), 1+s.rng.Intn(5))
		logger.Debug("MOVE: product %d to %s", rec.ProductID, rec.Location)
	case 4: // quality check found an expiry issue
		if s.rng.Intn(10) < 3 {
			days := 1 + s.rng.Intn(7)
			rec.ExpiryDate = s.refDate().AddDate(0, 0, days).Format(domain.DateLayout)
			logger.Debug("EXPIRY ALERT: product %d expires in %d days", rec.ProductID, days)
		}
	}
}

// sampleInventory builds a small realistic catalog, including products that
// are already low, out of stock, or near expiry so queries have something
// urgent to surface.
func (s *Simulator) sampleInventory() []domain.InventoryRecord {
	catalog := []struct {
		name     string
		location string
	}{
		{"Widget A - Heavy Duty", "SectionA-Aisle3-Shelf2"},
		{"Electronic Component B", "SectionC-Aisle2-Shelf5"},
		{"Packaging Material C", "SectionB-Aisle7-Shelf1"},
		{"Storage Box D", "SectionA-Aisle1-Shelf3"},
		{"Power Tool E", "SectionD-Aisle6-Shelf4"},
		{"Food Product F", "ColdStorage-Zone2"},
		{"Medical Supply G", "SecureArea-Aisle5"},
		{"Spare Part H", "SectionB-Aisle2-Shelf6"},
		{"Electronic Device I", "SectionD-Aisle1-Shelf2"},
		{"Office Supply J", "SectionA-Aisle5-Shelf1"},
		{"Raw Material K", "BulkStorage-Zone1"},
		{"Consumer Good L", "SectionC-Aisle3-Shelf4"},
		{"Industrial Item M", "HeavyGoods-Area3"},
		{"Seasonal Product N", "SectionB-Aisle4-Shelf2"},
		{"Fragile Item O", "SpecialHandling-Zone1"},
	}

	now := s.refDate()
	records := make([]domain.InventoryRecord, 0, len(catalog))
	for i, item := range catalog {
		id := 11023 + i
		stock := s.rng.Intn(201)
		sales := s.rng.Intn(151)
		if id%5 == 0 {
			stock = s.rng.Intn(9)
		}
		expiryDays := 30 + s.rng.Intn(336)
		if i%4 == 0 {
			expiryDays = -5 + s.rng.Intn(66)
		}
		records = append(records, domain.InventoryRecord{
			ProductID:         id,
			ProductName:       item.name,
			Location:          item.location,
			CurrentStock:      stock,
			LastSoldDate:      now.AddDate(0, 0, -s.rng.Intn(31)).Format(domain.DateLayout),
			ExpiryDate:        now.AddDate(0, 0, expiryDays).Format(domain.DateLayout),
			SalesLastMonth:    sales,
			TotalSales:        sales * (6 + s.rng.Intn(19)),
			FactoryDistanceKM: 1 + s.rng.Intn(25),
		})
	}
	return records
}
