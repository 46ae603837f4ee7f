package models

import "time"

// RateType classifies how an hour of work is billed
type RateType string

const (
	RateShopTime      RateType = "shop_time"
	RateTravelTime    RateType = "travel_time"
	RateFieldTime     RateType = "field_time"
	RateShopOvertime  RateType = "shop_overtime"
	RateFieldOvertime RateType = "field_overtime"
)

// AllRateTypes in the column order used on tickets and exports
var AllRateTypes = []RateType{
	RateShopTime,
	RateTravelTime,
	RateFieldTime,
	RateShopOvertime,
	RateFieldOvertime,
}

// IsValid reports whether rt is one of the known rate types
func (rt RateType) IsValid() bool {
	switch rt {
	case RateShopTime, RateTravelTime, RateFieldTime, RateShopOvertime, RateFieldOvertime:
		return true
	}
	return false
}

// TimeEntry is one unit of billable work logged by a technician.
// Entries are ingested from the time-tracking source and are read-only
// here except for upstream deletion; ID is the source system's id.
type TimeEntry struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	TechnicianID int       `json:"user_id"`
	CustomerID   int       `json:"customer_id"`           // 0 = unassigned
	ProjectID    int       `json:"project_id,omitempty"`  // 0 = no project
	Location     string    `json:"location,omitempty"`
	RateType     RateType  `json:"rate_type"`
	Hours        float64   `json:"hours"`
	Description  string    `json:"description"`
	Approver     string    `json:"approver,omitempty"`    // carried from the entry or its project
	POAFE        string    `json:"po_afe,omitempty"`
	CostCenter   string    `json:"cost_center,omitempty"`
	OtherRef     string    `json:"other_ref,omitempty"`
	IsDemo       bool      `json:"is_demo"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IngestTimeEntryRequest represents the request body for ingesting an entry
// from the time-tracking source
type IngestTimeEntryRequest struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"` // YYYY-MM-DD
	TechnicianID int     `json:"user_id"`
	CustomerID   int     `json:"customer_id"`
	ProjectID    int     `json:"project_id"`
	Location     string  `json:"location"`
	RateType     string  `json:"rate_type"`
	Hours        float64 `json:"hours"`
	Description  string  `json:"description"`
	Approver     string  `json:"approver"`
	POAFE        string  `json:"po_afe"`
	CostCenter   string  `json:"cost_center"`
	OtherRef     string  `json:"other_ref"`
	IsDemo       bool    `json:"is_demo"`
}

// TimeEntryFilter narrows a time-entry listing
type TimeEntryFilter struct {
	TechnicianID int
	CustomerID   int
	IsDemo       *bool
}
