package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription statuses as reported by the platform.
const (
	SubscriptionPending   = "pending"
	SubscriptionActive    = "active"
	SubscriptionSuspended = "suspended"
	SubscriptionCancelled = "cancelled"
)

// Subscription links a customer to a package and, for PPPoE connections,
// to a MikroTik router. Sync state is owned entirely by the platform.
type Subscription struct {
	ID                  int64           `json:"id"`
	Customer            int64           `json:"customer"`
	CustomerName        string          `json:"customer_name"`
	CustomerIDDisplay   string          `json:"customer_id_display"`
	Package             int64           `json:"package"`
	PackageName         string          `json:"package_name"`
	PackagePrice        decimal.Decimal `json:"package_price"`
	StartDate           string          `json:"start_date"`
	BillingDay          int             `json:"billing_day"`
	Status              string          `json:"status"`
	StatusDisplay       string          `json:"status_display"`
	Router              int64           `json:"router"`
	RouterName          string          `json:"router_name"`
	Protocol            string          `json:"protocol"`
	MikrotikProfileName string          `json:"mikrotik_profile_name"`
	MikrotikUsername    string          `json:"mikrotik_username"`
	FramedIPAddress     string          `json:"framed_ip_address"`
	MACAddress          string          `json:"mac_address"`
	IsSyncedToMikrotik  bool            `json:"is_synced_to_mikrotik"`
	LastSyncedAt        *time.Time      `json:"last_synced_at"`
	SyncError           string          `json:"sync_error"`
	ConnectionFee       decimal.Decimal `json:"connection_fee"`
	ReconnectionFee     decimal.Decimal `json:"reconnection_fee"`
	CancelledAt         *time.Time      `json:"cancelled_at"`
	CancellationReason  string          `json:"cancellation_reason"`
	CreatedByName       string          `json:"created_by_name"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// SubscriptionParams is the create/update payload for a subscription.
// ForceLink is only sent on the confirmed resubmission after the platform
// reports a PPPoE username collision on the router.
type SubscriptionParams struct {
	Customer         int64  `json:"customer"`
	Package          int64  `json:"package"`
	StartDate        string `json:"start_date"`
	BillingDay       int    `json:"billing_day,omitempty"`
	Router           int64  `json:"router,omitempty"`
	Protocol         string `json:"protocol,omitempty"`
	MikrotikUsername string `json:"mikrotik_username,omitempty"`
	MikrotikPassword string `json:"mikrotik_password,omitempty"`
	FramedIPAddress  string `json:"framed_ip_address,omitempty"`
	MACAddress       string `json:"mac_address,omitempty"`
	ConnectionFee    string `json:"connection_fee,omitempty"`
	ForceLink        bool   `json:"force_link,omitempty"`
}

// SubscriptionHistory is one audit entry on a subscription.
type SubscriptionHistory struct {
	ID              int64     `json:"id"`
	Subscription    int64     `json:"subscription"`
	Action          string    `json:"action"`
	ActionDisplay   string    `json:"action_display"`
	Notes           string    `json:"notes"`
	PerformedByName string    `json:"performed_by_name"`
	CreatedAt       time.Time `json:"created_at"`
}

// ActiveConnections is the live PPPoE session snapshot.
type ActiveConnections struct {
	Total       int                `json:"total"`
	Connections []ActiveConnection `json:"connections"`
}

// ActiveConnection is one live PPPoE session on a router.
type ActiveConnection struct {
	Username string `json:"username"`
	Address  string `json:"address"`
	Uptime   string `json:"uptime"`
	Router   string `json:"router"`
}
