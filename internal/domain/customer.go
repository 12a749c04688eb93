package domain

import "time"

// Customer statuses as reported by the platform.
const (
	CustomerActive    = "active"
	CustomerInactive  = "inactive"
	CustomerSuspended = "suspended"
)

// Zone is a service area (e.g., Dhanmondi, Mirpur).
type Zone struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ZoneParams is the create/update payload for a zone.
type ZoneParams struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// ConnectionType is a last-mile connection category (PPPoE, static IP, ...).
type ConnectionType struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ConnectionTypeParams is the create/update payload for a connection type.
type ConnectionTypeParams struct {
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Customer is a subscriber record. Display fields (ZoneName and friends)
// are resolved server-side; the console never derives them.
type Customer struct {
	ID                    int64     `json:"id"`
	CustomerID            string    `json:"customer_id"`
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	Phone                 string    `json:"phone"`
	NID                   string    `json:"nid"`
	Address               string    `json:"address"`
	Zone                  int64     `json:"zone"`
	ZoneName              string    `json:"zone_name"`
	BillingType           string    `json:"billing_type"`
	BillingTypeDisplay    string    `json:"billing_type_display"`
	ConnectionType        int64     `json:"connection_type"`
	ConnectionTypeDisplay string    `json:"connection_type_display"`
	MACAddress            string    `json:"mac_address"`
	Status                string    `json:"status"`
	StatusDisplay         string    `json:"status_display"`
	CreatedByName         string    `json:"created_by_name"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// CustomerParams is the create/update payload for a customer.
type CustomerParams struct {
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone"`
	NID            string `json:"nid,omitempty"`
	Address        string `json:"address"`
	Zone           int64  `json:"zone"`
	BillingType    string `json:"billing_type"`
	ConnectionType int64  `json:"connection_type,omitempty"`
	MACAddress     string `json:"mac_address,omitempty"`
	Status         string `json:"status,omitempty"`
}
