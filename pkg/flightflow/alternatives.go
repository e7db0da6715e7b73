package flightflow

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/randalmurphal/flightflow/pkg/flightflow/llm"
	"github.com/randalmurphal/flightflow/pkg/flightflow/records"
)

// maxShownAlternatives caps how many options one reply lists.
const maxShownAlternatives = 5

// filterSystemPrompt asks the model to translate a free-text change request
// into search constraints.
const filterSystemPrompt = `You are an airline assistant. Translate the
passenger's change request into flight search filters, relative to their
booked flight. Respond with a single JSON object; include only the filters
the request actually implies, leave the rest out:
{"departure_airport": "XXX", "arrival_airport": "XXX",
 "departure_date_from": "dd.mm.yyyy", "departure_date_to": "dd.mm.yyyy",
 "max_price_usd": 0, "depart_before": "HH:MM", "depart_after": "HH:MM"}`

// filterSpec is the schema of the filter-derivation JSON output.
type filterSpec struct {
	DepartureAirport  string  `json:"departure_airport"`
	ArrivalAirport    string  `json:"arrival_airport"`
	DepartureDateFrom string  `json:"departure_date_from"`
	DepartureDateTo   string  `json:"departure_date_to"`
	MaxPriceUSD       float64 `json:"max_price_usd"`
	DepartBefore      string  `json:"depart_before"`
	DepartAfter       string  `json:"depart_after"`
}

// handleAlternatives serves both flight flows.
//
// For a plain flight search it builds a booking deep link from the collected
// trip fields and completes the flow. For a change request it derives search
// filters from the user's wording (LLM first, keyword heuristics as
// fallback), queries the record store and lists the ranked options.
func (e *Engine) handleAlternatives(ctx Context, state ConversationState) (ConversationState, error) {
	if state.ActiveIntent == IntentSearchFlight {
		url := skyscannerURL(state)
		state.Append(Message{
			Content:   "Great - here is a link with flights matching your trip: " + url,
			Sender:    SenderSystem,
			IntentTag: IntentSearchFlight,
			FlightURL: url,
		})
		return state, nil
	}

	request := ""
	if msg, ok := state.LastUserMessage(); ok {
		request = msg.Content
	}

	filters := e.deriveFilters(ctx, state, request)
	if filters.Empty() {
		filters = fallbackFilters(state, request)
	}

	options, err := e.records.SearchAlternatives(ctx, filters)
	if err != nil {
		return state, &LookupFailure{Op: "search_alternatives", Err: err}
	}

	state.ActiveIntent = IntentSearchAlternative
	state.Append(Message{
		Content:   alternativesReply(options),
		Sender:    SenderSystem,
		IntentTag: IntentSearchAlternative,
	})
	return state, nil
}

// deriveFilters asks the LLM for filters and sanitizes the result.
// Returns zero Filters when the model fails or produces nothing usable.
func (e *Engine) deriveFilters(ctx Context, state ConversationState, request string) records.Filters {
	facts := fmt.Sprintf(
		"Booked flight: %s to %s on %s at %s, price %s USD.\nChange request: %s",
		state.Value(FieldDepartureAirport), state.Value(FieldArrivalAirport),
		state.Value(FieldDepartureDate), state.Collected["departure_time"],
		state.Collected["price_usd"], request,
	)

	resp, err := e.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: filterSystemPrompt,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: facts}},
		Temperature:  0,
	})
	if err != nil {
		ctx.Logger().Warn("filter derivation failed, using heuristics", "error", err)
		return records.Filters{}
	}

	var spec filterSpec
	if err := llm.DecodeJSON(resp.Content, &spec); err != nil {
		ctx.Logger().Warn("filter output unparsable, using heuristics", "error", err)
		return records.Filters{}
	}

	var f records.Filters
	if iataExact.MatchString(spec.DepartureAirport) {
		f.DepartureAirport = spec.DepartureAirport
	}
	if iataExact.MatchString(spec.ArrivalAirport) {
		f.ArrivalAirport = spec.ArrivalAirport
	}
	if _, err := time.Parse(canonicalDateLayout, spec.DepartureDateFrom); err == nil {
		f.DepartureDateFrom = spec.DepartureDateFrom
	}
	if _, err := time.Parse(canonicalDateLayout, spec.DepartureDateTo); err == nil {
		f.DepartureDateTo = spec.DepartureDateTo
	}
	if spec.MaxPriceUSD > 0 {
		f.MaxPriceUSD = spec.MaxPriceUSD
	}
	if validClock(spec.DepartBefore) {
		f.DepartBefore = spec.DepartBefore
	}
	if validClock(spec.DepartAfter) {
		f.DepartAfter = spec.DepartAfter
	}
	return f
}

// fallbackFilters derives filters from request keywords when the LLM path
// yields nothing. The booked route is always kept; at most one further
// constraint is added, never the full attribute set.
func fallbackFilters(state ConversationState, request string) records.Filters {
	f := records.Filters{
		DepartureAirport: state.Value(FieldDepartureAirport),
		ArrivalAirport:   state.Value(FieldArrivalAirport),
	}

	lower := strings.ToLower(request)
	bookedDate := state.Value(FieldDepartureDate)
	bookedTime := state.Collected["departure_time"]

	switch {
	case containsAny(lower, "cheap", "less expensive", "lower price", "price down"):
		if p, err := strconv.ParseFloat(state.Collected["price_usd"], 64); err == nil && p > 0 {
			f.MaxPriceUSD = p
		}
		if containsAny(lower, "same date", "same day") {
			f.DepartureDateFrom = bookedDate
			f.DepartureDateTo = bookedDate
		}
	case containsAny(lower, "earlier", "sooner"):
		f.DepartureDateFrom = bookedDate
		f.DepartureDateTo = bookedDate
		f.DepartBefore = bookedTime
	case containsAny(lower, "later"):
		f.DepartureDateFrom = bookedDate
		f.DepartureDateTo = bookedDate
		f.DepartAfter = bookedTime
	default:
		// Same route within a few days of the booked departure.
		if t, err := time.Parse(canonicalDateLayout, bookedDate); err == nil {
			f.DepartureDateFrom = t.AddDate(0, 0, -3).Format(canonicalDateLayout)
			f.DepartureDateTo = t.AddDate(0, 0, 3).Format(canonicalDateLayout)
		}
	}
	return f
}

// alternativesReply lists the ranked options, or explains that none matched.
func alternativesReply(options []records.AlternativeOption) string {
	if len(options) == 0 {
		return "I could not find an alternative flight matching that request. You can adjust the request, or say \"human assistant\" to speak with a colleague."
	}

	var b strings.Builder
	b.WriteString("Here is what I found:")
	for i, opt := range options {
		if i == maxShownAlternatives {
			break
		}
		fmt.Fprintf(&b, "\n%d) %s %s to %s on %s at %s, %.2f USD",
			i+1, opt.AirlineCode, opt.DepartureAirport, opt.ArrivalAirport,
			opt.DepartureDate, opt.DepartureTime, opt.PriceUSD)
	}
	b.WriteString("\nSay \"confirm\" to change to the best match, or tell me what to adjust.")
	return b.String()
}

// skyscannerURL builds a flight search deep link from the collected trip
// fields. Dates use Skyscanner's yymmdd path segments.
func skyscannerURL(state ConversationState) string {
	var b strings.Builder
	b.WriteString("https://www.skyscanner.net/transport/flights/")
	b.WriteString(strings.ToLower(state.Value(FieldDepartureAirport)))
	b.WriteString("/")
	b.WriteString(strings.ToLower(state.Value(FieldArrivalAirport)))
	b.WriteString("/")
	b.WriteString(skyscannerDate(state.Value(FieldDepartureDate)))
	if ret := state.Value(FieldReturnDate); ret != "" && !state.ReturnDeclined {
		b.WriteString("/")
		b.WriteString(skyscannerDate(ret))
	}
	b.WriteString("/?adults=")
	adults := state.Value(FieldAdultPassengers)
	if adults == "" {
		adults = "1"
	}
	b.WriteString(adults)
	return b.String()
}

// skyscannerDate converts dd.mm.yyyy to yymmdd.
func skyscannerDate(date string) string {
	t, err := time.Parse(canonicalDateLayout, date)
	if err != nil {
		return ""
	}
	return t.Format("060102")
}

// validClock reports whether s is an HH:MM time of day.
func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
