package flightflow

import "strings"

// cityAirports maps lowercase city names to their IATA codes.
// Multi-airport cities produce a disambiguation question during collection.
var cityAirports = map[string][]string{
	"london":        {"LHR", "LGW", "STN", "LTN"},
	"new york":      {"JFK", "EWR", "LGA"},
	"paris":         {"CDG", "ORY"},
	"moscow":        {"SVO", "DME", "VKO"},
	"tokyo":         {"HND", "NRT"},
	"milan":         {"MXP", "LIN", "BGY"},
	"rome":          {"FCO", "CIA"},
	"istanbul":      {"IST", "SAW"},
	"chicago":       {"ORD", "MDW"},
	"washington":    {"IAD", "DCA"},
	"berlin":        {"BER"},
	"madrid":        {"MAD"},
	"barcelona":     {"BCN"},
	"amsterdam":     {"AMS"},
	"frankfurt":     {"FRA"},
	"munich":        {"MUC"},
	"vienna":        {"VIE"},
	"prague":        {"PRG"},
	"lisbon":        {"LIS"},
	"dublin":        {"DUB"},
	"copenhagen":    {"CPH"},
	"stockholm":     {"ARN"},
	"oslo":          {"OSL"},
	"helsinki":      {"HEL"},
	"zurich":        {"ZRH"},
	"geneva":        {"GVA"},
	"brussels":      {"BRU"},
	"athens":        {"ATH"},
	"dubai":         {"DXB"},
	"singapore":     {"SIN"},
	"hong kong":     {"HKG"},
	"los angeles":   {"LAX"},
	"san francisco": {"SFO"},
	"boston":        {"BOS"},
	"miami":         {"MIA"},
	"toronto":       {"YYZ"},
	"sydney":        {"SYD"},
}

// defaultResolver resolves city names against the built-in table.
type defaultResolver struct{}

// Compile-time interface check.
var _ AirportResolver = defaultResolver{}

// Resolve implements AirportResolver.
func (defaultResolver) Resolve(city string) []string {
	key := strings.ToLower(strings.TrimSpace(city))
	key = strings.TrimSuffix(key, " airport")
	for _, prefix := range []string{"from ", "to "} {
		key = strings.TrimPrefix(key, prefix)
	}
	if codes, ok := cityAirports[key]; ok {
		out := make([]string, len(codes))
		copy(out, codes)
		return out
	}
	return nil
}
