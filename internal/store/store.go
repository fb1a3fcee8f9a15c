// Package store implements the authoritative inventory table on top of a
// flat CSV dataset. The only write primitive is an atomic whole-file
// replace (write-temp-then-rename), so concurrent readers never observe a
// partially written file.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"warehouse-rag/internal/domain"
	"warehouse-rag/internal/logger"
)

// CSVStore is a RecordStore backed by a single CSV file.
// Update commands serialize on mu so two near-simultaneous commands cannot
// both read the old version and overwrite each other's change.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

var _ domain.RecordStore = (*CSVStore)(nil)

// New creates a store over the dataset at path. The file need not exist yet;
// Load reports ErrDataUnavailable until it does.
func New(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the dataset file location.
func (s *CSVStore) Path() string { return s.path }

// Load returns the current full record set. Malformed rows are skipped with
// a warning; a missing or unreadable file is ErrDataUnavailable.
func (s *CSVStore) Load() ([]domain.InventoryRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty dataset at %s", domain.ErrDataUnavailable, s.path)
	}

	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}

	records := make([]domain.InventoryRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row, cols)
		if err != nil {
			logger.Warn("skipping malformed row %d in %s: %v", i+2, s.path, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReplaceAll atomically persists a full new record set. The temp file is
// written in the dataset's directory so the final os.Rename stays on one
// filesystem and remains atomic.
func (s *CSVStore) ReplaceAll(records []domain.InventoryRecord) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".inventory-*.csv.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write(domain.Columns); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	for _, rec := range records {
		if err := w.Write(formatRow(rec)); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

// ApplyFieldUpdate locates exactly one record matching the command's
// selector, overwrites only the named columns, and persists via ReplaceAll.
// The load-mutate-replace sequence runs as a unit under the store mutex.
func (s *CSVStore) ApplyFieldUpdate(cmd domain.UpdateCommand) (*domain.UpdateResult, error) {
	if !cmd.HasTarget() {
		return nil, domain.ErrAmbiguousTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.Load()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range records {
		if cmd.HasProductID {
			if records[i].ProductID == cmd.ProductID {
				idx = i
				break
			}
		} else if strings.EqualFold(records[i].ProductName, cmd.TargetName) {
			// Multiple records sharing a name resolve to the first match.
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, domain.ErrTargetNotFound
	}

	applied := make(map[string]string)
	var dropped []string
	for col, val := range cmd.Fields {
		if err := setColumn(&records[idx], col, val); err != nil {
			logger.Warn("dropping field %s=%q: %v", col, val, err)
			dropped = append(dropped, col)
			continue
		}
		applied[col] = val
	}
	if len(applied) == 0 {
		return nil, domain.ErrNoApplicableFields
	}

	if err := s.ReplaceAll(records); err != nil {
		return nil, err
	}

	parts := make([]string, 0, len(applied))
	for col, val := range applied {
		parts = append(parts, col+": "+val)
	}
	return &domain.UpdateResult{
		ProductID:     records[idx].ProductID,
		AppliedFields: applied,
		DroppedFields: dropped,
		Message:       "Successfully updated: " + strings.Join(parts, ", "),
	}, nil
}

func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, want := range domain.Columns {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("dataset header missing column %s", want)
		}
	}
	return cols, nil
}

func parseRow(row []string, cols map[string]int) (domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	get := func(col string) (string, error) {
		i := cols[col]
		if i >= len(row) {
			return "", fmt.Errorf("short row, missing %s", col)
		}
		return strings.TrimSpace(row[i]), nil
	}
	getInt := func(col string) (int, error) {
		raw, err := get(col)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("%s: %v", col, err)
		}
		return n, nil
	}

	var err error
	if rec.ProductID, err = getInt(domain.ColProductID); err != nil {
		return rec, err
	}
	if rec.ProductName, err = get(domain.ColProductName); err != nil {
		return rec, err
	}
	if rec.Location, err = get(domain.ColLocation); err != nil {
		return rec, err
	}
	if rec.CurrentStock, err = getInt(domain.ColCurrentStock); err != nil {
		return rec, err
	}
	if rec.CurrentStock < 0 {
		return rec, fmt.Errorf("negative %s", domain.ColCurrentStock)
	}
	if rec.LastSoldDate, err = get(domain.ColLastSoldDate); err != nil {
		return rec, err
	}
	if rec.ExpiryDate, err = get(domain.ColExpiryDate); err != nil {
		return rec, err
	}
	if rec.SalesLastMonth, err = getInt(domain.ColSalesLastMonth); err != nil {
		return rec, err
	}
	if rec.SalesLastMonth < 0 {
		return rec, fmt.Errorf("negative %s", domain.ColSalesLastMonth)
	}
	if rec.TotalSales, err = getInt(domain.ColTotalSales); err != nil {
		return rec, err
	}
	if rec.TotalSales < 0 {
		return rec, fmt.Errorf("negative %s", domain.ColTotalSales)
	}
	if rec.FactoryDistanceKM, err = getInt(domain.ColFactoryDistanceKM); err != nil {
		return rec, err
	}
	if rec.FactoryDistanceKM < 0 {
		return rec, fmt.Errorf("negative %s", domain.ColFactoryDistanceKM)
	}
	return rec, nil
}

func formatRow(rec domain.InventoryRecord) []string {
	return []string{
		strconv.Itoa(rec.ProductID),
		rec.ProductName,
		rec.Location,
		strconv.Itoa(rec.CurrentStock),
		rec.LastSoldDate,
		rec.ExpiryDate,
		strconv.Itoa(rec.SalesLastMonth),
		strconv.Itoa(rec.TotalSales),
		strconv.Itoa(rec.FactoryDistanceKM),
	}
}

func setColumn(rec *domain.InventoryRecord, col, val string) error {
	nonNegative := func() (int, error) {
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, err
		}
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return n, nil
	}
	switch col {
	case domain.ColProductName:
		rec.ProductName = val
	case domain.ColLocation:
		rec.Location = val
	case domain.ColCurrentStock:
		n, err := nonNegative()
		if err != nil {
			return err
		}
		rec.CurrentStock = n
	case domain.ColLastSoldDate:
		rec.LastSoldDate = val
	case domain.ColExpiryDate:
		rec.ExpiryDate = val
	case domain.ColSalesLastMonth:
		n, err := nonNegative()
		if err != nil {
			return err
		}
		rec.SalesLastMonth = n
	case domain.ColTotalSales:
		n, err := nonNegative()
		if err != nil {
			return err
		}
		rec.TotalSales = n
	case domain.ColFactoryDistanceKM:
		n, err := nonNegative()
		if err != nil {
			return err
		}
		rec.FactoryDistanceKM = n
	default:
		return fmt.Errorf("unknown column %s", col)
	}
	return nil
}
