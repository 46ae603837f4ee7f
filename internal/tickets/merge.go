package tickets

import (
	"sort"
	"strings"
	"time"

	"ticket-backend/internal/models"
)

// placeholder values in saved overrides are treated as unset
const placeholderValue = "-"

// DisplayRow is one rendered service line: a live time entry, an edited
// one, or a manually added synthetic row.
type DisplayRow struct {
	EntryID       string  `json:"entry_id"`
	Description   string  `json:"description"`
	ShopTime      float64 `json:"st"`
	TravelTime    float64 `json:"tt"`
	FieldTime     float64 `json:"ft"`
	ShopOvertime  float64 `json:"shop_ot"`
	FieldOvertime float64 `json:"field_ot"`
	Synthetic     bool    `json:"synthetic,omitempty"`
	Overridden    bool    `json:"overridden,omitempty"`
}

// Hours sums the row's five rate columns
func (r DisplayRow) Hours() float64 {
	return r.ShopTime + r.TravelTime + r.FieldTime + r.ShopOvertime + r.FieldOvertime
}

// DisplayTicket is the merged view shown to the user and exported:
// live aggregate values with any saved overrides layered on top.
type DisplayTicket struct {
	RecordID     int           `json:"record_id,omitempty"`
	TicketNumber string        `json:"ticket_number,omitempty"`
	Status       models.Status `json:"workflow_status"`
	Locked       bool          `json:"locked"`
	Standalone   bool          `json:"standalone,omitempty"`
	Ambiguous    bool          `json:"ambiguous_match,omitempty"`

	Date         time.Time `json:"date"`
	TechnicianID int       `json:"user_id"`
	CustomerID   int       `json:"customer_id"`
	ProjectID    int       `json:"project_id,omitempty"`

	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address,omitempty"`
	Contact         string `json:"contact,omitempty"`
	Location        string `json:"location,omitempty"`
	ProjectName     string `json:"project_name,omitempty"`
	TechnicianName  string `json:"technician_name,omitempty"`
	Approver        string `json:"approver,omitempty"`
	POAFE           string `json:"po_afe,omitempty"`
	CostCenter      string `json:"cost_center,omitempty"`
	OtherRef        string `json:"other_ref,omitempty"`
	Notes           string `json:"notes,omitempty"`

	Rates       Rates        `json:"rates"`
	Rows        []DisplayRow `json:"rows"`
	TotalHours  float64      `json:"total_hours"`
	TotalAmount float64      `json:"total_amount"`

	IsDemo     bool       `json:"is_demo,omitempty"`
	RejectedAt *time.Time `json:"rejected_at,omitempty"`
	RestoredAt *time.Time `json:"restored_at,omitempty"`
}

// Merge produces the DisplayTicket for an aggregate and its matched
// record (either may be nil, not both). Merging is idempotent: the same
// inputs always yield the same display.
func Merge(agg *TicketAggregate, rec *models.Ticket) *DisplayTicket {
	dt := &DisplayTicket{Status: models.StatusDraft}

	if agg != nil {
		dt.Date = agg.Date
		dt.TechnicianID = agg.Key.TechnicianID
		dt.CustomerID = agg.Key.CustomerID
		dt.ProjectID = agg.Key.ProjectID
		dt.CustomerName = agg.CustomerName
		dt.CustomerAddress = agg.CustomerAddress
		dt.Contact = agg.CustomerContact
		dt.Location = agg.Key.Location
		dt.ProjectName = agg.ProjectName
		dt.TechnicianName = agg.TechnicianName
		dt.Approver = agg.Billing.Approver
		dt.POAFE = agg.Billing.POAFE
		dt.CostCenter = agg.Billing.CostCenter
		dt.Rates = agg.Rates
		dt.IsDemo = agg.IsDemo
	}

	if rec != nil {
		dt.RecordID = rec.ID
		dt.TicketNumber = rec.TicketNumber
		dt.Status = rec.WorkflowStatus
		dt.Locked = rec.IsLocked()
		dt.RejectedAt = rec.RejectedAt
		dt.RestoredAt = rec.RestoredAt
		dt.IsDemo = dt.IsDemo || rec.IsDemo
		if agg == nil {
			dt.Standalone = true
			dt.Date = rec.Date
			dt.TechnicianID = rec.TechnicianID
			dt.CustomerID = rec.CustomerID
			if rec.ProjectID != nil {
				dt.ProjectID = *rec.ProjectID
			}
			dt.Location = rec.Location
			dt.Approver = rec.Approver
			dt.POAFE = rec.POAFE
			dt.CostCenter = rec.CostCenter
		}

		mergeHeader(dt, agg, rec)
		mergeRates(dt, rec)
	}

	dt.Rows = mergeRows(agg, rec)

	// Snapshot totals are authoritative for locked tickets; live
	// recomputation applies everywhere else.
	if rec != nil && rec.IsLocked() {
		dt.TotalHours = rec.TotalHours
		dt.TotalAmount = rec.TotalAmount
	} else {
		dt.TotalHours, dt.TotalAmount = Totals(dt.Rows, dt.Rates)
	}

	return dt
}

// Totals computes hour and monetary totals from rows and rates
func Totals(rows []DisplayRow, rates Rates) (hours, amount float64) {
	for _, r := range rows {
		hours += r.Hours()
		amount += r.ShopTime*rates.Shop +
			r.TravelTime*rates.Travel +
			r.FieldTime*rates.Field +
			r.ShopOvertime*rates.ShopOT +
			r.FieldOvertime*rates.FieldOT
	}
	return hours, amount
}

// overrideWins reports whether saved header overrides take precedence
// over live values: always for locked tickets and tickets with any
// override saved, unless the ticket is an unlocked draft/rejected whose
// live entries were updated after the record (freshness rule).
func overrideWins(agg *TicketAggregate, rec *models.Ticket) bool {
	if rec.IsLocked() {
		return true
	}
	if rec.HeaderOverrides.IsEmpty() {
		return false
	}
	if agg != nil && agg.LatestEntryUpdate().After(rec.UpdatedAt) {
		return false
	}
	return true
}

func mergeHeader(dt *DisplayTicket, agg *TicketAggregate, rec *models.Ticket) {
	ov := rec.HeaderOverrides
	prefer := overrideWins(agg, rec)
	// Billing fields freeze once a ticket number exists, regardless of
	// the freshness rule.
	frozen := rec.HasTicketNumber()

	pick := func(dst *string, override string, billing bool) {
		if override == "" || override == placeholderValue {
			return
		}
		if prefer || (billing && frozen) {
			*dst = override
		}
	}

	pick(&dt.CustomerName, ov.CustomerName, false)
	pick(&dt.CustomerAddress, ov.CustomerAddress, false)
	pick(&dt.Contact, ov.Contact, false)
	pick(&dt.Location, ov.Location, false)
	pick(&dt.ProjectName, ov.ProjectName, false)
	pick(&dt.Approver, ov.Approver, true)
	pick(&dt.POAFE, ov.POAFE, true)
	pick(&dt.CostCenter, ov.CostCenter, true)
	pick(&dt.OtherRef, ov.OtherRef, false)
	pick(&dt.Notes, ov.Notes, false)
}

// mergeRates applies snapshotted rate overrides: a locked ticket that
// froze numeric rates must render amounts from that snapshot, not from
// the current employee rate table.
func mergeRates(dt *DisplayTicket, rec *models.Ticket) {
	if !rec.IsLocked() && rec.HeaderOverrides.IsEmpty() {
		return
	}
	ov := rec.HeaderOverrides
	if ov.RateShop != nil {
		dt.Rates.Shop = *ov.RateShop
	}
	if ov.RateTravel != nil {
		dt.Rates.Travel = *ov.RateTravel
	}
	if ov.RateField != nil {
		dt.Rates.Field = *ov.RateField
	}
	if ov.RateShopOT != nil {
		dt.Rates.ShopOT = *ov.RateShopOT
	}
	if ov.RateFieldOT != nil {
		dt.Rates.FieldOT = *ov.RateFieldOT
	}
}

// mergeRows builds the service lines: one row per live entry with hours
// bucketed into the five rate columns, row overrides replacing their
// entry's values, and synthetic rows appended for override ids with no
// backing entry.
func mergeRows(agg *TicketAggregate, rec *models.Ticket) []DisplayRow {
	var rows []DisplayRow
	seen := make(map[string]bool)

	if agg != nil {
		for _, e := range agg.Entries {
			row := DisplayRow{EntryID: e.ID, Description: e.Description}
			setRateColumn(&row, e.RateType, e.Hours)
			if rec != nil {
				if ov, ok := rec.EditedEntryOverrides[e.ID]; ok {
					row = rowFromOverride(e.ID, ov)
					row.Overridden = true
				} else if legacyRowEdit(rec, &row) {
					row.Overridden = true
				}
			}
			seen[e.ID] = true
			rows = append(rows, row)
		}
	}

	if rec != nil {
		// Deterministic order for synthetic rows
		ids := make([]string, 0, len(rec.EditedEntryOverrides))
		for id := range rec.EditedEntryOverrides {
			if !seen[id] {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)
		for _, id := range ids {
			row := rowFromOverride(id, rec.EditedEntryOverrides[id])
			row.Synthetic = true
			row.Overridden = true
			rows = append(rows, row)
		}
	}

	return rows
}

// legacyRowEdit applies the pre-override edit maps (edited_descriptions
// / edited_hours) to a live row. Legacy hours replaced the row's single
// populated column.
func legacyRowEdit(rec *models.Ticket, row *DisplayRow) bool {
	edited := false
	if d, ok := rec.EditedDescriptions[row.EntryID]; ok && strings.TrimSpace(d) != "" {
		row.Description = d
		edited = true
	}
	if h, ok := rec.EditedHours[row.EntryID]; ok {
		switch {
		case row.ShopTime != 0:
			row.ShopTime = h
		case row.TravelTime != 0:
			row.TravelTime = h
		case row.FieldTime != 0:
			row.FieldTime = h
		case row.ShopOvertime != 0:
			row.ShopOvertime = h
		case row.FieldOvertime != 0:
			row.FieldOvertime = h
		default:
			row.ShopTime = h
		}
		edited = true
	}
	return edited
}

func rowFromOverride(id string, ov models.RowOverride) DisplayRow {
	return DisplayRow{
		EntryID:       id,
		Description:   ov.Description,
		ShopTime:      ov.ShopTime,
		TravelTime:    ov.TravelTime,
		FieldTime:     ov.FieldTime,
		ShopOvertime:  ov.ShopOvertime,
		FieldOvertime: ov.FieldOvertime,
	}
}

func setRateColumn(row *DisplayRow, rt models.RateType, hours float64) {
	switch rt {
	case models.RateShopTime:
		row.ShopTime += hours
	case models.RateTravelTime:
		row.TravelTime += hours
	case models.RateFieldTime:
		row.FieldTime += hours
	case models.RateShopOvertime:
		row.ShopOvertime += hours
	case models.RateFieldOvertime:
		row.FieldOvertime += hours
	}
}
