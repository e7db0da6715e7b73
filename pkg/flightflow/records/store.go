// Package records provides read-only access to ticket and alternative-flight
// records.
package records

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for record lookups.
var (
	// ErrNotFound indicates no ticket matched the identity triple.
	ErrNotFound = errors.New("ticket not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("record store closed")
)

// DateLayout is the canonical date format used across the store boundary.
const DateLayout = "02.01.2006"

// TicketRecord is a booked ticket as stored in the backing record store.
// Dates use DateLayout; times use HH:MM.
type TicketRecord struct {
	TicketNumber      string  `json:"ticket_number"`
	PassengerName     string  `json:"passenger_name"`
	PassengerBirthday string  `json:"passenger_birthday"`
	AirlineCode       string  `json:"airline_code"`
	DepartureAirport  string  `json:"departure_airport"`
	ArrivalAirport    string  `json:"arrival_airport"`
	DepartureDate     string  `json:"departure_date"`
	DepartureTime     string  `json:"departure_time"`
	ArrivalDate       string  `json:"arrival_date"`
	ArrivalTime       string  `json:"arrival_time"`
	ReturnDepAirport  string  `json:"return_departure_airport,omitempty"`
	ReturnArrAirport  string  `json:"return_arrival_airport,omitempty"`
	ReturnDate        string  `json:"return_date,omitempty"`
	ReturnDepTime     string  `json:"return_departure_time,omitempty"`
	ReturnArrDate     string  `json:"return_arrival_date,omitempty"`
	ReturnArrTime     string  `json:"return_arrival_time,omitempty"`
	PriceUSD          float64 `json:"price_usd"`
}

// AlternativeOption is a candidate replacement flight.
type AlternativeOption struct {
	AirlineCode      string  `json:"airline_code"`
	DepartureAirport string  `json:"departure_airport"`
	ArrivalAirport   string  `json:"arrival_airport"`
	DepartureDate    string  `json:"departure_date"`
	DepartureTime    string  `json:"departure_time"`
	ArrivalDate      string  `json:"arrival_date"`
	ArrivalTime      string  `json:"arrival_time"`
	ReturnDepAirport string  `json:"return_departure_airport,omitempty"`
	ReturnArrAirport string  `json:"return_arrival_airport,omitempty"`
	ReturnDate       string  `json:"return_date,omitempty"`
	ReturnDepTime    string  `json:"return_departure_time,omitempty"`
	ReturnArrDate    string  `json:"return_arrival_date,omitempty"`
	ReturnArrTime    string  `json:"return_arrival_time,omitempty"`
	PriceUSD         float64 `json:"price_usd"`
}

// Filters restricts an alternatives search. Zero values mean "no constraint".
//
// A search deliberately never constrains on every ticket attribute at once -
// the caller selects the subset relevant to the requested change, otherwise
// nothing would ever match.
type Filters struct {
	DepartureAirport string
	ArrivalAirport   string

	// Departure date window, inclusive, in DateLayout.
	DepartureDateFrom string
	DepartureDateTo   string

	// MaxPriceUSD caps the price; 0 means no cap.
	MaxPriceUSD float64

	// DepartBefore/DepartAfter bound the departure time of day (HH:MM).
	DepartBefore string
	DepartAfter  string
}

// Empty reports whether no constraint is set at all.
func (f Filters) Empty() bool {
	return f == Filters{}
}

// Store is read-only access to the ticket database.
// Implementations must be safe for concurrent use.
type Store interface {
	// FindTicket performs exactly one read against the ticket table.
	// Returns ErrNotFound if the identity triple matches no record.
	FindTicket(ctx context.Context, ticketNumber, birthday, name string) (*TicketRecord, error)

	// SearchAlternatives returns alternative flights matching the filters.
	// An empty result is not an error.
	SearchAlternatives(ctx context.Context, f Filters) ([]AlternativeOption, error)

	// Close releases any resources.
	Close() error
}

// parseDate parses a DateLayout date, reporting ok=false on failure.
func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	return t, err == nil
}
