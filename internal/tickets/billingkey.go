// Package tickets is the in-memory reconciliation engine: it derives
// ticket aggregates from live time entries, correlates them with
// persisted ticket records, layers saved overrides on top of live data,
// and drives the ticket workflow state machine. Everything here is pure
// computation; persistence stays in the repositories.
package tickets

import (
	"strings"

	"ticket-backend/internal/models"
)

// billingKeySep joins the billing key components. The composite string
// matches the persisted form used by existing data.
const billingKeySep = "::"

// BillingKey disambiguates tickets that share date/technician/customer/
// project/location but are billed differently (e.g. two cost centers on
// one day).
type BillingKey struct {
	Approver   string
	POAFE      string
	CostCenter string
}

// BillingKeyFromEntry derives the billing key from a time entry's
// approver fields
func BillingKeyFromEntry(e models.TimeEntry) BillingKey {
	return BillingKey{
		Approver:   strings.TrimSpace(e.Approver),
		POAFE:      strings.TrimSpace(e.POAFE),
		CostCenter: strings.TrimSpace(e.CostCenter),
	}
}

// BillingKeyFromTicket derives the billing key from a persisted record
func BillingKeyFromTicket(t *models.Ticket) BillingKey {
	return BillingKey{
		Approver:   strings.TrimSpace(t.Approver),
		POAFE:      strings.TrimSpace(t.POAFE),
		CostCenter: strings.TrimSpace(t.CostCenter),
	}
}

// ParseBillingKey splits a persisted approver::poAfe::costCenter string
func ParseBillingKey(s string) BillingKey {
	parts := strings.SplitN(s, billingKeySep, 3)
	var k BillingKey
	if len(parts) > 0 {
		k.Approver = parts[0]
	}
	if len(parts) > 1 {
		k.POAFE = parts[1]
	}
	if len(parts) > 2 {
		k.CostCenter = parts[2]
	}
	return k
}

// String returns the composite approver::poAfe::costCenter form.
// All-empty components collapse to the empty string.
func (k BillingKey) String() string {
	if k.IsEmpty() {
		return ""
	}
	return k.Approver + billingKeySep + k.POAFE + billingKeySep + k.CostCenter
}

// IsEmpty reports whether no component is set
func (k BillingKey) IsEmpty() bool {
	return k.Approver == "" && k.POAFE == "" && k.CostCenter == ""
}

// POAFEMatches applies the full-match rule for the PO/AFE component:
// the comparison only binds when both sides carry a non-empty PO/AFE.
func (k BillingKey) POAFEMatches(other BillingKey) bool {
	if k.POAFE == "" || other.POAFE == "" {
		return true
	}
	return k.POAFE == other.POAFE
}
