package records

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory record store for development and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	tickets      []TicketRecord
	alternatives []AlternativeOption
	closed       bool
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddTicket adds a ticket record.
func (m *MemoryStore) AddTicket(t TicketRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets = append(m.tickets, t)
}

// AddAlternative adds an alternative flight record.
func (m *MemoryStore) AddAlternative(a AlternativeOption) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alternatives = append(m.alternatives, a)
}

// FindTicket implements Store.
func (m *MemoryStore) FindTicket(_ context.Context, ticketNumber, birthday, name string) (*TicketRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	for _, t := range m.tickets {
		if t.TicketNumber == ticketNumber &&
			t.PassengerBirthday == birthday &&
			strings.EqualFold(t.PassengerName, name) {
			record := t
			return &record, nil
		}
	}
	return nil, ErrNotFound
}

// SearchAlternatives implements Store.
func (m *MemoryStore) SearchAlternatives(_ context.Context, f Filters) ([]AlternativeOption, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	var out []AlternativeOption
	for _, a := range m.alternatives {
		if matches(a, f) {
			out = append(out, a)
		}
	}

	// Stable order: cheapest first, then earliest departure.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PriceUSD != out[j].PriceUSD {
			return out[i].PriceUSD < out[j].PriceUSD
		}
		di, _ := parseDate(out[i].DepartureDate)
		dj, _ := parseDate(out[j].DepartureDate)
		return di.Before(dj)
	})

	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func matches(a AlternativeOption, f Filters) bool {
	if f.DepartureAirport != "" && a.DepartureAirport != f.DepartureAirport {
		return false
	}
	if f.ArrivalAirport != "" && a.ArrivalAirport != f.ArrivalAirport {
		return false
	}
	if f.MaxPriceUSD > 0 && a.PriceUSD >= f.MaxPriceUSD {
		return false
	}
	if f.DepartureDateFrom != "" {
		from, ok := parseDate(f.DepartureDateFrom)
		d, ok2 := parseDate(a.DepartureDate)
		if ok && ok2 && d.Before(from) {
			return false
		}
	}
	if f.DepartureDateTo != "" {
		to, ok := parseDate(f.DepartureDateTo)
		d, ok2 := parseDate(a.DepartureDate)
		if ok && ok2 && d.After(to) {
			return false
		}
	}
	if f.DepartBefore != "" && a.DepartureTime >= f.DepartBefore {
		return false
	}
	if f.DepartAfter != "" && a.DepartureTime <= f.DepartAfter {
		return false
	}
	return true
}
