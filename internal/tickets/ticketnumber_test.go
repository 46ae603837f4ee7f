package tickets_test

import (
	"testing"

	"ticket-backend/internal/tickets"
)

func TestFormatTicketNumber(t *testing.T) {
	tests := []struct {
		initials string
		year     int
		sequence int
		want     string
	}{
		{"JD", 2024, 1, "JD_24001"},
		{"jd", 2024, 1, "JD_24001"},
		{" RW ", 2025, 137, "RW_25137"},
		{"ABC", 2030, 999, "ABC_30999"},
		{"JD", 2007, 42, "JD_07042"},
	}
	for _, tt := range tests {
		if got := tickets.FormatTicketNumber(tt.initials, tt.year, tt.sequence); got != tt.want {
			t.Errorf("FormatTicketNumber(%q, %d, %d) = %q, want %q",
				tt.initials, tt.year, tt.sequence, got, tt.want)
		}
	}
}

func TestParseTicketNumberRoundTrip(t *testing.T) {
	initials, year, seq, ok := tickets.ParseTicketNumber("JD_24017")
	if !ok {
		t.Fatal("valid ticket number failed to parse")
	}
	if initials != "JD" || year != 24 || seq != 17 {
		t.Errorf("parsed %q %d %d, want JD 24 17", initials, year, seq)
	}
}

func TestParseTicketNumberRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "JD24001", "JD_2401", "jd_24001", "JD_240012", "1D_24001"} {
		if _, _, _, ok := tickets.ParseTicketNumber(s); ok {
			t.Errorf("ParseTicketNumber(%q) accepted malformed input", s)
		}
	}
}
