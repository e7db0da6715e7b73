package flightflow

// FieldName identifies one piece of ticket or passenger information the
// assistant collects during a conversation.
type FieldName string

// The canonical field set. Missing-field lists from the classifier are
// filtered against these, so an LLM inventing a field name cannot grow the
// collection queue.
const (
	FieldTicketNumber      FieldName = "ticket_number"
	FieldPassengerName     FieldName = "passenger_name"
	FieldPassengerBirthday FieldName = "passenger_birthday"
	FieldDepartureAirport  FieldName = "departure_airport"
	FieldArrivalAirport    FieldName = "arrival_airport"
	FieldDepartureDate     FieldName = "departure_date"
	FieldReturnDate        FieldName = "return_date"
	FieldAdultPassengers   FieldName = "adult_passengers"
)

// IdentityFields are required before a ticket lookup.
var IdentityFields = []FieldName{
	FieldTicketNumber,
	FieldPassengerBirthday,
	FieldPassengerName,
}

// AllFields lists every collectable field in default collection order.
var AllFields = []FieldName{
	FieldTicketNumber,
	FieldPassengerName,
	FieldPassengerBirthday,
	FieldDepartureAirport,
	FieldArrivalAirport,
	FieldDepartureDate,
	FieldReturnDate,
	FieldAdultPassengers,
}

var knownFields = func() map[FieldName]bool {
	m := make(map[FieldName]bool, len(AllFields))
	for _, f := range AllFields {
		m[f] = true
	}
	return m
}()

// KnownField reports whether name is one of the canonical fields.
func KnownField(name string) bool {
	return knownFields[FieldName(name)]
}

// fieldPrompts are the questions asked when a field is up for collection.
var fieldPrompts = map[FieldName]string{
	FieldTicketNumber:      "Please enter your ticket number (format: ABC1234567890).",
	FieldPassengerName:     "Please enter the passenger's full name as printed on the ticket.",
	FieldPassengerBirthday: "Please provide the passenger's date of birth (dd.mm.yyyy).",
	FieldDepartureAirport:  "Please enter the departure airport (city name or IATA code).",
	FieldArrivalAirport:    "Please enter the destination airport (city name or IATA code).",
	FieldDepartureDate:     "Please enter the departure date (dd.mm.yyyy).",
	FieldReturnDate:        "Please enter the return date (dd.mm.yyyy), or say \"no return\" for a one-way trip.",
	FieldAdultPassengers:   "How many adult passengers are travelling (1-9)?",
}

// fieldDisplayNames are used in confirmation messages.
var fieldDisplayNames = map[FieldName]string{
	FieldTicketNumber:      "ticket number",
	FieldPassengerName:     "passenger name",
	FieldPassengerBirthday: "date of birth",
	FieldDepartureAirport:  "departure airport",
	FieldArrivalAirport:    "destination airport",
	FieldDepartureDate:     "departure date",
	FieldReturnDate:        "return date",
	FieldAdultPassengers:   "number of adult passengers",
}

// Prompt returns the collection question for the field.
func (f FieldName) Prompt() string {
	if p, ok := fieldPrompts[f]; ok {
		return p
	}
	return "Please provide your " + string(f) + "."
}

// DisplayName returns a human-readable name for the field.
func (f FieldName) DisplayName() string {
	if n, ok := fieldDisplayNames[f]; ok {
		return n
	}
	return string(f)
}
