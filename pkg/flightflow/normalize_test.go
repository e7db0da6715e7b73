package flightflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizeTicket covers the 3-letters-10-digits contract.
func TestNormalizeTicket(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"exact", "ABC1234567890", "ABC1234567890", false},
		{"embedded in sentence", "my ticket is ABC1234567890 thanks", "ABC1234567890", false},
		{"too short", "abc123", "", true},
		{"lowercase letters", "abc1234567890", "", true},
		{"too many digits", "ABC12345678901", "ABC1234567890", false},
		{"empty", "", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeTicket(tc.input)
			if tc.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, FieldTicketNumber, verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestNormalizeDate verifies canonicalization to dd.mm.yyyy across phrasings.
func TestNormalizeDate(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"canonical", "19.10.1991", "19.10.1991", false},
		{"year first", "1991.10.19", "19.10.1991", false},
		{"iso dashes", "1991-10-19", "19.10.1991", false},
		{"slashes", "19/10/1991", "19.10.1991", false},
		{"embedded in sentence", "my birthday is 1991.10.19", "19.10.1991", false},
		{"month name with ordinal", "March 5th 2024", "05.03.2024", false},
		{"day before month name", "5 March 2024", "05.03.2024", false},
		{"month name with comma", "march 5, 2024", "05.03.2024", false},
		{"invalid day", "32.01.2024", "", true},
		{"invalid month", "19.13.1991", "", true},
		{"not a date", "whenever", "", true},
		{"feb 30", "30.02.2024", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeDate(FieldDepartureDate, tc.input)
			if tc.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestNormalizeBirthday verifies the past-date constraint.
func TestNormalizeBirthday(t *testing.T) {
	got, err := normalizeBirthday("my birthday is 1991.10.19")
	require.NoError(t, err)
	assert.Equal(t, "19.10.1991", got)

	_, err = normalizeBirthday("19.10.2991")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldPassengerBirthday, verr.Field)
}

// TestNormalizeAdults verifies digit and natural-language quantities.
func TestNormalizeAdults(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"digit", "2", "2", false},
		{"word", "three", "3", false},
		{"a couple", "a couple of us", "2", false},
		{"alone", "I am alone", "1", false},
		{"just me", "just me", "1", false},
		{"digit in sentence", "there will be 4 of us", "4", false},
		{"zero", "0", "", true},
		{"too many", "12", "", true},
		{"nonsense", "many many", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeAdults(tc.input)
			if tc.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestDeclinesReturn covers one-way phrasings.
func TestDeclinesReturn(t *testing.T) {
	assert.True(t, declinesReturn("no return, it's a one way trip"))
	assert.True(t, declinesReturn("One-way please"))
	assert.False(t, declinesReturn("12.03.2026"))
}

// TestSkyscannerDate verifies the deep-link date segment.
func TestSkyscannerDate(t *testing.T) {
	assert.Equal(t, "260305", skyscannerDate("05.03.2026"))
	assert.Equal(t, "", skyscannerDate("not a date"))
}
