package tickets

import (
	"ticket-backend/internal/models"
	"ticket-backend/internal/timeutil"
)

// MatchResult pairs an aggregate with its claimed record, if any.
// Ambiguous is set when the claim relied on the location-less fallback
// (one side had no location); in pathological data that relaxation can
// bind two distinct real-world tickets to one record, so callers surface
// it rather than trusting the bind blindly.
type MatchResult struct {
	Aggregate *TicketAggregate
	Record    *models.Ticket
	Ambiguous bool
}

// MatchOutcome is the result of one reconciliation pass
type MatchOutcome struct {
	Matched []MatchResult
	// Standalone records have no claiming aggregate but carry saved
	// state worth surfacing (overrides, legacy edits, a snapshot total,
	// or being the ticket currently open in an editor).
	Standalone []*models.Ticket
}

// MatchRecords correlates aggregates with persisted records. Each
// non-discarded record is claimed at most once per pass. Locked records
// are offered before drafts so an approved ticket wins the aggregate
// over any stale draft with the same key. openTicketID is the record
// currently open in an editor (0 = none); it is always surfaced even
// without a claiming aggregate.
func MatchRecords(aggs []*TicketAggregate, records []*models.Ticket, openTicketID int) MatchOutcome {
	pool := make(map[int]*models.Ticket, len(records))
	for _, r := range records {
		if r.IsDiscarded {
			continue
		}
		pool[r.ID] = r
	}

	// Stable candidate ordering: locked first, then by id
	candidates := func(locked bool) []*models.Ticket {
		var out []*models.Ticket
		for _, r := range records {
			if r.IsDiscarded {
				continue
			}
			if _, free := pool[r.ID]; !free {
				continue
			}
			if r.IsLocked() == locked {
				out = append(out, r)
			}
		}
		return out
	}

	claim := func(r *models.Ticket) { delete(pool, r.ID) }

	var matched []MatchResult
	for _, agg := range aggs {
		res := MatchResult{Aggregate: agg}

		// Explicit link from a prior pass in the same session wins,
		// keeping the aggregate/record binding stable while the user
		// works.
		if agg.MatchedRecordID != 0 {
			if r, free := pool[agg.MatchedRecordID]; free {
				res.Record = r
				claim(r)
				matched = append(matched, res)
				continue
			}
		}

		// Full match before core match; within each tier locked
		// records are claimed before drafts.
		found := false
		for _, strict := range []bool{true, false} {
			if found {
				break
			}
			for _, locked := range []bool{true, false} {
				if found {
					break
				}
				for _, r := range candidates(locked) {
					ok, ambiguous := keysMatch(agg, r, strict)
					if !ok {
						continue
					}
					res.Record = r
					res.Ambiguous = ambiguous
					claim(r)
					agg.MatchedRecordID = r.ID
					found = true
					break
				}
			}
		}

		matched = append(matched, res)
	}

	var standalone []*models.Ticket
	for _, r := range records {
		if r.IsDiscarded {
			continue
		}
		if _, free := pool[r.ID]; !free {
			continue
		}
		if r.CustomerID == 0 {
			continue
		}
		if shouldSurfaceStandalone(r, openTicketID) {
			standalone = append(standalone, r)
		}
	}

	return MatchOutcome{Matched: matched, Standalone: standalone}
}

// keysMatch applies the full (strict=true) or core (strict=false) match
// between an aggregate and a record. The second return reports whether
// the location comparison passed only via the empty-side relaxation.
func keysMatch(agg *TicketAggregate, r *models.Ticket, strict bool) (ok bool, ambiguous bool) {
	if !timeutil.SameDate(agg.Date, r.Date) {
		return false, false
	}
	if agg.Key.TechnicianID != r.TechnicianID {
		return false, false
	}
	// Customer: equal, or both unassigned
	if agg.Key.CustomerID != r.CustomerID && !(agg.Key.CustomerID == 0 && r.CustomerID == 0) {
		return false, false
	}
	// Project: equal, or record has none (legacy records without a
	// project still claim the aggregate)
	if r.ProjectID != nil && *r.ProjectID != agg.Key.ProjectID {
		return false, false
	}
	// Location: equal, or either side empty (the known-ambiguous
	// fallback preserved for compatibility with existing data)
	switch {
	case agg.Key.Location == r.Location:
		// exact
	case agg.Key.Location == "" || r.Location == "":
		ambiguous = true
	default:
		return false, false
	}
	if strict {
		if !agg.Billing.POAFEMatches(BillingKeyFromTicket(r)) {
			return false, ambiguous
		}
	}
	return true, ambiguous
}

// shouldSurfaceStandalone reports whether an unclaimed record still
// carries meaningful saved state. In-progress edits are never silently
// dropped just because their source time entries were deleted.
func shouldSurfaceStandalone(r *models.Ticket, openTicketID int) bool {
	if len(r.EditedEntryOverrides) > 0 {
		return true
	}
	if len(r.EditedHours) > 0 || len(r.EditedDescriptions) > 0 {
		return true
	}
	if r.TotalHours != 0 {
		return true
	}
	if openTicketID != 0 && r.ID == openTicketID {
		return true
	}
	return false
}
