package flightflow

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// canonicalDateLayout is the single format every collected date is stored in.
const canonicalDateLayout = "02.01.2006"

var (
	ticketPattern  = regexp.MustCompile(`[A-Z]{3}[0-9]{10}`)
	ticketExact    = regexp.MustCompile(`^[A-Z]{3}[0-9]{10}$`)
	iataExact      = regexp.MustCompile(`^[A-Z]{3}$`)
	ordinalSuffix  = regexp.MustCompile(`(\d{1,2})(st|nd|rd|th)\b`)
	yearFirstDate  = regexp.MustCompile(`(\d{4})[./-](\d{1,2})[./-](\d{1,2})`)
	dayFirstDate   = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})[./-](\d{4})`)
	monthNameFirst = regexp.MustCompile(`(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:\s*,?\s*(\d{4}))?`)
	dayMonthName   = regexp.MustCompile(`(\d{1,2})\s+(?:of\s+)?(january|february|march|april|may|june|july|august|september|october|november|december)(?:\s*,?\s*(\d{4}))?`)
	digitsOnly     = regexp.MustCompile(`\b([1-9])\b`)
)

var monthNumbers = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

// normalizeTicket extracts and validates a ticket number.
// The contract is exactly 3 uppercase letters followed by 10 digits.
func normalizeTicket(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if ticketExact.MatchString(trimmed) {
		return trimmed, nil
	}
	if m := ticketPattern.FindString(input); m != "" {
		return m, nil
	}
	return "", &ValidationError{
		Field:  FieldTicketNumber,
		Input:  input,
		Reason: "a ticket number is 3 uppercase letters followed by 10 digits, e.g. ABC1234567890",
	}
}

// normalizeDate extracts a calendar date from free text and canonicalizes it
// to dd.mm.yyyy regardless of input phrasing.
//
// Accepted phrasings include "19.10.1991", "1991.10.19", "1991-10-19",
// "March 5th 2024" and "5 March 2024". A missing year defaults to the
// current year.
func normalizeDate(field FieldName, input string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(input))
	lower = ordinalSuffix.ReplaceAllString(lower, "$1")

	if m := yearFirstDate.FindStringSubmatch(lower); m != nil {
		return buildDate(field, input, m[3], m[2], m[1])
	}
	if m := dayFirstDate.FindStringSubmatch(lower); m != nil {
		return buildDate(field, input, m[1], m[2], m[3])
	}
	// Day-before-month goes first: "5 march 2024" would otherwise let the
	// month-first pattern swallow the year digits as the day.
	if m := dayMonthName.FindStringSubmatch(lower); m != nil {
		return buildDate(field, input, m[1], strconv.Itoa(int(monthNumbers[m[2]])), m[3])
	}
	if m := monthNameFirst.FindStringSubmatch(lower); m != nil {
		return buildDate(field, input, m[2], strconv.Itoa(int(monthNumbers[m[1]])), m[3])
	}

	return "", &ValidationError{
		Field:  field,
		Input:  input,
		Reason: "please give the date as dd.mm.yyyy, e.g. 19.10.1991",
	}
}

// buildDate validates the parts as a real calendar date and formats them.
func buildDate(field FieldName, input, dayStr, monthStr, yearStr string) (string, error) {
	invalid := &ValidationError{
		Field:  field,
		Input:  input,
		Reason: "that is not a valid calendar date",
	}

	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return "", invalid
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return "", invalid
	}
	year := time.Now().Year()
	if yearStr != "" {
		if year, err = strconv.Atoi(yearStr); err != nil {
			return "", invalid
		}
	}

	if month < 1 || month > 12 {
		return "", invalid
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return "", invalid
	}
	return t.Format(canonicalDateLayout), nil
}

// adultWords maps natural-language quantities to a passenger count.
// Checked in order so longer phrases win over substrings ("alone" before "one").
var adultWords = []struct {
	phrase string
	count  int
}{
	{"a couple", 2}, {"couple", 2},
	{"alone", 1}, {"just me", 1}, {"only me", 1}, {"myself", 1},
	{"on my own", 1}, {"solo", 1},
	{"three", 3}, {"four", 4}, {"five", 5},
	{"six", 6}, {"seven", 7}, {"eight", 8}, {"nine", 9},
	{"one", 1}, {"two", 2},
}

// normalizeAdults extracts a passenger count between 1 and 9.
func normalizeAdults(input string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(input))

	if n, err := strconv.Atoi(lower); err == nil {
		if n >= 1 && n <= 9 {
			return strconv.Itoa(n), nil
		}
		return "", &ValidationError{
			Field:  FieldAdultPassengers,
			Input:  input,
			Reason: "the number of adult passengers must be between 1 and 9",
		}
	}

	for _, w := range adultWords {
		if strings.Contains(lower, w.phrase) {
			return strconv.Itoa(w.count), nil
		}
	}
	if m := digitsOnly.FindStringSubmatch(lower); m != nil {
		return m[1], nil
	}

	return "", &ValidationError{
		Field:  FieldAdultPassengers,
		Input:  input,
		Reason: "please give a number of adult passengers between 1 and 9",
	}
}

// normalizeName cleans up a passenger name. Names have no format contract
// beyond being non-empty; whitespace is collapsed.
func normalizeName(input string) (string, error) {
	name := strings.Join(strings.Fields(input), " ")
	if name == "" {
		return "", &ValidationError{
			Field:  FieldPassengerName,
			Input:  input,
			Reason: "the passenger name cannot be empty",
		}
	}
	return name, nil
}

// normalizeBirthday is normalizeDate specialized for the birthday field, which
// additionally must lie in the past.
func normalizeBirthday(input string) (string, error) {
	date, err := normalizeDate(FieldPassengerBirthday, input)
	if err != nil {
		return "", err
	}
	t, _ := time.Parse(canonicalDateLayout, date)
	if !t.Before(time.Now()) {
		return "", &ValidationError{
			Field:  FieldPassengerBirthday,
			Input:  input,
			Reason: "a date of birth must be in the past",
		}
	}
	return date, nil
}

// declinesReturn reports whether the user said the trip has no return leg.
func declinesReturn(input string) bool {
	lower := strings.ToLower(input)
	for _, phrase := range []string{"no return", "one way", "one-way", "only there", "won't come back", "not coming back"} {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
