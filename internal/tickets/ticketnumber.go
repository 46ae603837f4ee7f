package tickets

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Ticket numbers follow INITIALS_YYnnn: technician initials, two-digit
// year, zero-padded sequence unique per (initials, year, demo/real
// partition). Allocation of the sequence happens in the repository as a
// single read-max-then-insert step.

var ticketNumberRe = regexp.MustCompile(`^([A-Z]+)_(\d{2})(\d{3})$`)

// FormatTicketNumber renders the canonical ticket number
func FormatTicketNumber(initials string, year, sequence int) string {
	return fmt.Sprintf("%s_%02d%03d", strings.ToUpper(strings.TrimSpace(initials)), year%100, sequence)
}

// ParseTicketNumber splits a ticket number into its parts. The year
// comes back as the two-digit form.
func ParseTicketNumber(s string) (initials string, year, sequence int, ok bool) {
	m := ticketNumberRe.FindStringSubmatch(s)
	if m == nil {
		return "", 0, 0, false
	}
	year, _ = strconv.Atoi(m[2])
	sequence, _ = strconv.Atoi(m[3])
	return m[1], year, sequence, true
}
