// Package batch runs payroll cycles for many employees and threads the
// reconciliation carries between an employee's cycles.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/pph21-engine/generic"
)

// =============================================================================
// CYCLE KEY
// =============================================================================

// Cycle identifies a monthly payroll cycle.
type Cycle struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func (c Cycle) After(other Cycle) bool {
	if c.Year != other.Year {
		return c.Year > other.Year
	}
	return c.Month > other.Month
}

func (c Cycle) String() string {
	return fmt.Sprintf("%04d-%02d", c.Year, int(c.Month))
}

// =============================================================================
// CARRY LEDGER - In-memory record of each cycle's annual tax
// =============================================================================

// CarryEntry is the annual tax computed in one cycle.
type CarryEntry struct {
	Cycle     Cycle
	AnnualTax decimal.Decimal
}

// CarryLedger remembers the annual tax of every recorded cycle per employee.
// Entries are append-only and must arrive in calendar order. Safe for
// concurrent use.
type CarryLedger struct {
	mu      sync.RWMutex
	entries map[string][]CarryEntry
}

func NewCarryLedger() *CarryLedger {
	return &CarryLedger{entries: make(map[string][]CarryEntry)}
}

// Record appends the annual tax of a cycle. A cycle that is not strictly
// after the employee's last recorded cycle is rejected with
// generic.ErrCycleOutOfOrder.
func (l *CarryLedger) Record(_ context.Context, employeeID string, cycle Cycle, annualTax decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.entries[employeeID]
	if n := len(entries); n > 0 && !cycle.After(entries[n-1].Cycle) {
		return fmt.Errorf("%w: employee %s cycle %s after %s", generic.ErrCycleOutOfOrder, employeeID, cycle, entries[n-1].Cycle)
	}
	l.entries[employeeID] = append(entries, CarryEntry{Cycle: cycle, AnnualTax: annualTax})
	return nil
}

// Carries returns the previous and first cycle annual tax of an employee
// within year. Both are zero before the first cycle of the year.
func (l *CarryLedger) Carries(_ context.Context, employeeID string, year int) (previous, first decimal.Decimal) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	previous, first = decimal.Zero, decimal.Zero
	found := false
	for _, e := range l.entries[employeeID] {
		if e.Cycle.Year != year {
			continue
		}
		if !found {
			first = e.AnnualTax
			found = true
		}
		previous = e.AnnualTax
	}
	return previous, first
}

// History returns a copy of the employee's recorded cycles in order.
func (l *CarryLedger) History(_ context.Context, employeeID string) []CarryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]CarryEntry, len(l.entries[employeeID]))
	copy(result, l.entries[employeeID])
	return result
}
