// Package interpreter parses natural-language mutation commands into
// structured field updates and applies them to the record store.
//
// Parsing is a best-effort heuristic layer built on keyword patterns, not a
// guarantee: the patterns are unanchored and can overlap, so a command that
// mentions several keywords may extract several fields. That is deliberate
// (one command may legitimately update multiple fields), but it also means
// unusual phrasings can parse in surprising ways. Callers should preview
// parsed commands when the stakes are high.
package interpreter

import (
	"regexp"
	"strconv"
	"strings"

	"warehouse-rag/internal/domain"
	"warehouse-rag/internal/logger"
)

// A command moves through parse, resolve, and apply. Parse extracts the
// selector and fields; resolve and apply happen inside the record store
// under its write lock.
type Interpreter struct {
	store domain.RecordStore
}

// New creates an interpreter over the given record store.
func New(store domain.RecordStore) *Interpreter {
	return &Interpreter{store: store}
}

var (
	productIDRe = regexp.MustCompile(`(?i)product\s*(?:id|number)?\s*#?\s*(\d+)`)
	renameRe    = regexp.MustCompile(`(?i)update\s+product\s+name\s+(\w+)\s+(?:as|to)\s+(\w+)`)
	stockRe     = regexp.MustCompile(`(?i)update.*(?:current\s*stock|stock).*?(?:to|as)\s*(\d+)`)
	lastSoldRe  = regexp.MustCompile(`(?i)update.*last\s*sold\s*date.*?(?:to|as)\s*([0-9-]+)`)
	expiryRe    = regexp.MustCompile(`(?i)update.*expiry\s*date.*?(?:to|as)\s*([0-9-]+)`)
	salesRe     = regexp.MustCompile(`(?i)update.*(?:sales\s*last\s*month|last\s*month\s*sales).*?(?:to|as)\s*(\d+)`)
	locationRe  = regexp.MustCompile(`(?i)update.*location.*?(?:to|as)\s*(\w+)`)
	distanceRe  = regexp.MustCompile(`(?i)update.*(?:factory\s*distance|distance\s*(?:to|from)\s*factory).*?(?:to|as)\s*(\d+)`)
	// Product-name selector for non-rename field updates:
	// "update Organic Apples location to SectionB".
	namedTargetRe = regexp.MustCompile(`(?i)update\s+([a-z][\w ]*?)\s+(?:location|stock|expiry|last|sales|factory|distance)`)
)

// Parse extracts the target selector and every recognized field from the
// command text. Each field is matched independently; a command mentioning
// multiple keyword phrases yields multiple fields.
func (in *Interpreter) Parse(raw string) domain.UpdateCommand {
	cmd := domain.UpdateCommand{
		Raw:    raw,
		Fields: make(map[string]string),
	}

	if m := renameRe.FindStringSubmatch(raw); m != nil {
		cmd.TargetName = m[1]
		cmd.Fields[domain.ColProductName] = m[2]
	}

	if m := productIDRe.FindStringSubmatch(raw); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			cmd.ProductID = id
			cmd.HasProductID = true
		}
	}

	if m := stockRe.FindStringSubmatch(raw); m != nil {
		cmd.Fields[domain.ColCurrentStock] = m[1]
	}
	if m := lastSoldRe.FindStringSubmatch(raw); m != nil {
		cmd.Fields[domain.ColLastSoldDate] = m[1]
	}
	if m := expiryRe.FindStringSubmatch(raw); m != nil {
		cmd.Fields[domain.ColExpiryDate] = m[1]
	}
	if m := salesRe.FindStringSubmatch(raw); m != nil {
		cmd.Fields[domain.ColSalesLastMonth] = m[1]
	}
	if m := locationRe.FindStringSubmatch(raw); m != nil {
		cmd.Fields[domain.ColLocation] = m[1]
	}
	if m := distanceRe.FindStringSubmatch(raw); m != nil {
		cmd.Fields[domain.ColFactoryDistanceKM] = m[1]
	}

	// A product-name selector only applies when no explicit ID was given
	// and this is not the rename form (which set TargetName already).
	if !cmd.HasProductID && cmd.TargetName == "" {
		if m := namedTargetRe.FindStringSubmatch(raw); m != nil {
			name := strings.TrimSpace(m[1])
			if !strings.EqualFold(name, "product") {
				cmd.TargetName = name
			}
		}
	}

	logger.Debug("parsed command %q -> id=%v name=%q fields=%v",
		raw, cmd.ProductID, cmd.TargetName, cmd.Fields)
	return cmd
}

// Execute parses, resolves, and applies a command. Rejections come back as
// the sentinel errors ErrAmbiguousTarget, ErrTargetNotFound, and
// ErrNoApplicableFields; the original data is untouched on any rejection.
func (in *Interpreter) Execute(raw string) (*domain.UpdateResult, error) {
	cmd := in.Parse(raw)
	if !cmd.HasTarget() {
		return nil, domain.ErrAmbiguousTarget
	}
	if len(cmd.Fields) == 0 {
		return nil, domain.ErrNoApplicableFields
	}
	return in.store.ApplyFieldUpdate(cmd)
}
