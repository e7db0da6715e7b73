package flightflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// handleInfoCollection consumes the latest user message as the answer to the
// pending question (field prompt or airport clarification), then asks for the
// next missing field.
//
// On a validation failure the field stays missing, an explanatory message is
// appended and the rest of the state is untouched, so the user simply answers
// again.
func (e *Engine) handleInfoCollection(ctx Context, state ConversationState) (ConversationState, error) {
	if msg, ok := state.LastMessage(); ok && msg.Sender == SenderUser {
		var err error
		if state.Clarification != nil {
			state, err = e.applyClarification(state, msg.Content)
		} else if field, pending := state.NextMissing(); pending {
			state, err = e.Collect(state, field, msg.Content)
		}

		var verr *ValidationError
		if errors.As(err, &verr) {
			ctx.Logger().Debug("field validation failed",
				"field", string(verr.Field), "input", verr.Input)
			state.AppendSystem(verr.Reason)
			return state, nil
		}
		if err != nil {
			return state, err
		}

		if state.Clarification != nil {
			// The airport answer was ambiguous; ask which candidate.
			state.AppendSystem(state.Clarification.Question)
			return state, nil
		}
	}

	if next, ok := state.NextMissing(); ok {
		state.AppendSystem(next.Prompt())
	}
	return state, nil
}

// Collect validates raw user input for a field and incorporates it into the
// state. On success the field moves from missing to collected; collecting a
// departure date re-queues the return date unless the user declined a return
// leg. On failure the returned error is a *ValidationError and the state is
// returned unchanged (no partial writes).
//
// An ambiguous airport answer is not an error: the state comes back with a
// pending Clarification and the field still missing.
func (e *Engine) Collect(state ConversationState, field FieldName, input string) (ConversationState, error) {
	if field == FieldReturnDate && declinesReturn(input) {
		state.ReturnDeclined = true
		state.removeMissing(FieldReturnDate)
		return state, nil
	}

	var (
		value string
		err   error
	)
	switch field {
	case FieldTicketNumber:
		value, err = normalizeTicket(input)
	case FieldPassengerName:
		value, err = normalizeName(input)
	case FieldPassengerBirthday:
		value, err = normalizeBirthday(input)
	case FieldDepartureDate, FieldReturnDate:
		value, err = normalizeDate(field, input)
	case FieldAdultPassengers:
		value, err = normalizeAdults(input)
	case FieldDepartureAirport, FieldArrivalAirport:
		return e.collectAirport(state, field, input)
	default:
		err = &ValidationError{Field: field, Input: input, Reason: "unknown field"}
	}
	if err != nil {
		return state, err
	}

	state.SetCollected(field, value)
	if field == FieldDepartureDate && !state.ReturnDeclined && !state.IsCollected(FieldReturnDate) {
		state.AddMissing(FieldReturnDate)
	}
	return state, nil
}

// collectAirport accepts a bare IATA code directly and resolves free-text
// city names through the resolver. Multiple candidates suspend collection
// behind a clarification question.
func (e *Engine) collectAirport(state ConversationState, field FieldName, input string) (ConversationState, error) {
	upper := strings.ToUpper(strings.TrimSpace(input))
	if iataExact.MatchString(upper) {
		state.SetCollected(field, upper)
		return state, nil
	}

	candidates := e.resolver.Resolve(input)
	switch len(candidates) {
	case 0:
		return state, &ValidationError{
			Field:  field,
			Input:  input,
			Reason: "I don't recognize that airport or city. Please give a city name or a 3-letter IATA code.",
		}
	case 1:
		state.SetCollected(field, candidates[0])
		return state, nil
	default:
		state.Clarification = &Clarification{
			Field:    field,
			Options:  candidates,
			Question: clarificationQuestion(input, candidates),
		}
		return state, nil
	}
}

// applyClarification resolves a pending airport disambiguation from the
// user's pick (a list number or one of the offered codes).
func (e *Engine) applyClarification(state ConversationState, input string) (ConversationState, error) {
	c := state.Clarification
	choice := strings.TrimSpace(input)

	var pick string
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(c.Options) {
		pick = c.Options[n-1]
	} else {
		upper := strings.ToUpper(choice)
		for _, opt := range c.Options {
			if opt == upper {
				pick = opt
				break
			}
		}
	}
	if pick == "" {
		return state, &ValidationError{
			Field:  c.Field,
			Input:  input,
			Reason: "please pick one of the listed airports by number or code: " + strings.Join(c.Options, ", "),
		}
	}

	state.Clarification = nil
	state.SetCollected(c.Field, pick)
	return state, nil
}

// clarificationQuestion phrases the disambiguation sub-question.
func clarificationQuestion(city string, options []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q matches several airports:", strings.TrimSpace(city))
	for i, opt := range options {
		fmt.Fprintf(&b, " %d) %s", i+1, opt)
	}
	b.WriteString(". Which one do you mean?")
	return b.String()
}
