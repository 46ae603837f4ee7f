package models

import "time"

// Technician is the employee master-data record. Pay rates are the
// current per-hour rates per rate type; locked tickets never read these
// directly, they render from their snapshotted overrides.
type Technician struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Initials    string    `json:"initials"` // ticket number prefix
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	RateShop    float64   `json:"rt"`
	RateTravel  float64   `json:"tt"`
	RateField   float64   `json:"ft"`
	RateShopOT  float64   `json:"shop_ot"`
	RateFieldOT float64   `json:"field_ot"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Customer master-data record, resolved for ticket display only
type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Contact   string    `json:"contact,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project master-data record. Approver fields default onto time entries
// logged against the project.
type Project struct {
	ID         int       `json:"id"`
	CustomerID int       `json:"customer_id"`
	Name       string    `json:"name"`
	Approver   string    `json:"approver,omitempty"`
	POAFE      string    `json:"po_afe,omitempty"`
	CostCenter string    `json:"cost_center,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
