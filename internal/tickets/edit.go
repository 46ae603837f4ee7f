package tickets

import (
	"math"
	"strings"

	"ticket-backend/internal/models"
)

// HourTolerance absorbs floating-point round-trip noise when comparing
// hour values
const HourTolerance = 0.001

func hoursEqual(a, b float64) bool {
	return math.Abs(a-b) <= HourTolerance
}

// HeaderState is the editable header field set tracked by an editor
// session
type HeaderState struct {
	CustomerName    string
	CustomerAddress string
	Contact         string
	Location        string
	ProjectName     string
	Approver        string
	POAFE           string
	CostCenter      string
	OtherRef        string
	Notes           string
}

// HeaderStateFromDisplay captures the header fields of a merged ticket
func HeaderStateFromDisplay(dt *DisplayTicket) HeaderState {
	return HeaderState{
		CustomerName:    dt.CustomerName,
		CustomerAddress: dt.CustomerAddress,
		Contact:         dt.Contact,
		Location:        dt.Location,
		ProjectName:     dt.ProjectName,
		Approver:        dt.Approver,
		POAFE:           dt.POAFE,
		CostCenter:      dt.CostCenter,
		OtherRef:        dt.OtherRef,
		Notes:           dt.Notes,
	}
}

func (h HeaderState) fields() []string {
	return []string{
		h.CustomerName, h.CustomerAddress, h.Contact, h.Location,
		h.ProjectName, h.Approver, h.POAFE, h.CostCenter, h.OtherRef, h.Notes,
	}
}

// EditorSession tracks pending changes for one open ticket editor. It
// holds the immutable snapshot taken on open; there is no ambient
// "currently open ticket" state anywhere else.
type EditorSession struct {
	TicketID int // persisted record id, 0 for a not-yet-created ticket

	headerSnap HeaderState
	rowsSnap   []DisplayRow

	PendingExpenseAdds    []models.Expense
	PendingExpenseDeletes []int
}

// NewEditorSession snapshots the merged ticket as opened
func NewEditorSession(ticketID int, dt *DisplayTicket) *EditorSession {
	s := &EditorSession{TicketID: ticketID}
	s.ResetSnapshot(dt)
	return s
}

// ResetSnapshot re-baselines the session after a save or a
// close-without-save, clearing the pending flags.
func (s *EditorSession) ResetSnapshot(dt *DisplayTicket) {
	s.headerSnap = HeaderStateFromDisplay(dt)
	s.rowsSnap = append([]DisplayRow(nil), dt.Rows...)
	s.PendingExpenseAdds = nil
	s.PendingExpenseDeletes = nil
}

// HeaderDirty reports whether any header field's trimmed value differs
// from its snapshot
func (s *EditorSession) HeaderDirty(current HeaderState) bool {
	snap := s.headerSnap.fields()
	cur := current.fields()
	for i := range snap {
		if strings.TrimSpace(snap[i]) != strings.TrimSpace(cur[i]) {
			return true
		}
	}
	return false
}

// RowsDirty reports whether the row set changed: count differs, or any
// row's description/hours differ from the snapshot row at the same
// position (hour comparisons within tolerance).
func (s *EditorSession) RowsDirty(current []DisplayRow) bool {
	if len(current) != len(s.rowsSnap) {
		return true
	}
	for i, row := range current {
		snap := s.rowsSnap[i]
		if strings.TrimSpace(row.Description) != strings.TrimSpace(snap.Description) {
			return true
		}
		if !hoursEqual(row.ShopTime, snap.ShopTime) ||
			!hoursEqual(row.TravelTime, snap.TravelTime) ||
			!hoursEqual(row.FieldTime, snap.FieldTime) ||
			!hoursEqual(row.ShopOvertime, snap.ShopOvertime) ||
			!hoursEqual(row.FieldOvertime, snap.FieldOvertime) {
			return true
		}
	}
	return false
}

// HasPendingChanges gates the save action and the unsaved-changes
// prompt
func (s *EditorSession) HasPendingChanges(header HeaderState, rows []DisplayRow) bool {
	return s.HeaderDirty(header) || s.RowsDirty(rows) ||
		len(s.PendingExpenseAdds) > 0 || len(s.PendingExpenseDeletes) > 0
}

// MinimizeEntryOverrides reduces a requested override map to the rows
// that actually differ from their live values. Clients round-trip the
// full row set on save; persisting it verbatim would store no-op
// overrides that shadow future time-entry edits.
func MinimizeEntryOverrides(requested map[string]models.RowOverride, live []DisplayRow) map[string]models.RowOverride {
	rows := make([]DisplayRow, 0, len(requested))
	for id, ov := range requested {
		rows = append(rows, rowFromOverride(id, ov))
	}
	return ComputeEntryOverrides(rows, live)
}

// ComputeEntryOverrides diffs the edited rows against the original
// (live-derived) rows and returns the minimal override set: rows whose
// values equal their original within tolerance are never included.
// Rows with no original (synthetic, manually added) are always
// included.
func ComputeEntryOverrides(current, original []DisplayRow) map[string]models.RowOverride {
	orig := make(map[string]DisplayRow, len(original))
	for _, r := range original {
		orig[r.EntryID] = r
	}

	out := make(map[string]models.RowOverride)
	for _, row := range current {
		o, exists := orig[row.EntryID]
		if exists &&
			strings.TrimSpace(row.Description) == strings.TrimSpace(o.Description) &&
			hoursEqual(row.ShopTime, o.ShopTime) &&
			hoursEqual(row.TravelTime, o.TravelTime) &&
			hoursEqual(row.FieldTime, o.FieldTime) &&
			hoursEqual(row.ShopOvertime, o.ShopOvertime) &&
			hoursEqual(row.FieldOvertime, o.FieldOvertime) {
			continue
		}
		out[row.EntryID] = models.RowOverride{
			Description:   row.Description,
			ShopTime:      row.ShopTime,
			TravelTime:    row.TravelTime,
			FieldTime:     row.FieldTime,
			ShopOvertime:  row.ShopOvertime,
			FieldOvertime: row.FieldOvertime,
		}
	}
	return out
}
