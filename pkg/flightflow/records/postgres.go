package records

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver
)

// PostgresStore reads tickets and alternatives from Postgres.
//
// The schema matches the airline's ticketing tables: `tickets` keyed by
// (ticket_number, passenger_birthday, passenger_name) and
// `alternative_tickets` with dates stored as DDMMYYYY varchars.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore opens a connection pool for the given DSN.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// FindTicket implements Store.
func (s *PostgresStore) FindTicket(ctx context.Context, ticketNumber, birthday, name string) (*TicketRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT ticket_number, passenger_name, passenger_birthday, airline_code,
		       departure_airport, arrival_airport, departure_date, departure_time,
		       arrival_date, arrival_time, return_departure_airport, return_arrival_airport,
		       return_date, return_departure_time, return_arrival_date, return_arrival_time,
		       price_usd
		FROM tickets
		WHERE ticket_number = $1 AND passenger_birthday = $2 AND passenger_name = $3
	`, ticketNumber, toWire(birthday), name)

	var t TicketRecord
	var retDepAirport, retArrAirport, retDate, retDepTime, retArrDate, retArrTime sql.NullString
	err := row.Scan(
		&t.TicketNumber, &t.PassengerName, &t.PassengerBirthday, &t.AirlineCode,
		&t.DepartureAirport, &t.ArrivalAirport, &t.DepartureDate, &t.DepartureTime,
		&t.ArrivalDate, &t.ArrivalTime, &retDepAirport, &retArrAirport,
		&retDate, &retDepTime, &retArrDate, &retArrTime,
		&t.PriceUSD,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query ticket: %w", err)
	}

	t.ReturnDepAirport = retDepAirport.String
	t.ReturnArrAirport = retArrAirport.String
	t.ReturnDate = fromWire(retDate.String)
	t.ReturnDepTime = retDepTime.String
	t.ReturnArrDate = fromWire(retArrDate.String)
	t.ReturnArrTime = retArrTime.String

	t.PassengerBirthday = fromWire(t.PassengerBirthday)
	t.DepartureDate = fromWire(t.DepartureDate)
	t.ArrivalDate = fromWire(t.ArrivalDate)

	return &t, nil
}

// SearchAlternatives implements Store.
//
// Airports and price cap are pushed into SQL; the date window and time-of-day
// bounds are applied in Go because the legacy schema stores dates as DDMMYYYY
// strings, which do not compare chronologically.
func (s *PostgresStore) SearchAlternatives(ctx context.Context, f Filters) ([]AlternativeOption, error) {
	query := `
		SELECT airline_code, departure_airport, arrival_airport,
		       departure_date, departure_time, arrival_date, arrival_time,
		       return_departure_airport, return_arrival_airport, return_date,
		       return_departure_time, return_arrival_date, return_arrival_time,
		       price_usd
		FROM alternative_tickets`

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.DepartureAirport != "" {
		conds = append(conds, "departure_airport = "+arg(f.DepartureAirport))
	}
	if f.ArrivalAirport != "" {
		conds = append(conds, "arrival_airport = "+arg(f.ArrivalAirport))
	}
	if f.MaxPriceUSD > 0 {
		conds = append(conds, "price_usd < "+arg(f.MaxPriceUSD))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alternatives: %w", err)
	}
	defer rows.Close()

	var out []AlternativeOption
	for rows.Next() {
		var a AlternativeOption
		var retDepAirport, retArrAirport, retDate, retDepTime, retArrDate, retArrTime sql.NullString
		if err := rows.Scan(
			&a.AirlineCode, &a.DepartureAirport, &a.ArrivalAirport,
			&a.DepartureDate, &a.DepartureTime, &a.ArrivalDate, &a.ArrivalTime,
			&retDepAirport, &retArrAirport, &retDate,
			&retDepTime, &retArrDate, &retArrTime,
			&a.PriceUSD,
		); err != nil {
			return nil, fmt.Errorf("scan alternative: %w", err)
		}

		a.DepartureDate = fromWire(a.DepartureDate)
		a.ArrivalDate = fromWire(a.ArrivalDate)
		a.ReturnDepAirport = retDepAirport.String
		a.ReturnArrAirport = retArrAirport.String
		a.ReturnDate = fromWire(retDate.String)
		a.ReturnDepTime = retDepTime.String
		a.ReturnArrDate = fromWire(retArrDate.String)
		a.ReturnArrTime = retArrTime.String

		if inDateWindow(a, f) {
			out = append(out, a)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alternatives: %w", err)
	}

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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func inDateWindow(a AlternativeOption, f Filters) bool {
	d, ok := parseDate(a.DepartureDate)
	if f.DepartureDateFrom != "" {
		if from, ok2 := parseDate(f.DepartureDateFrom); ok && ok2 && d.Before(from) {
			return false
		}
	}
	if f.DepartureDateTo != "" {
		if to, ok2 := parseDate(f.DepartureDateTo); ok && ok2 && d.After(to) {
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

// toWire converts a canonical dd.mm.yyyy date to the DDMMYYYY column format.
func toWire(date string) string {
	return strings.ReplaceAll(date, ".", "")
}

// fromWire converts a DDMMYYYY column value to canonical dd.mm.yyyy.
// Values already in canonical form pass through unchanged.
func fromWire(date string) string {
	if len(date) == 8 && !strings.Contains(date, ".") {
		return date[0:2] + "." + date[2:4] + "." + date[4:8]
	}
	return date
}
