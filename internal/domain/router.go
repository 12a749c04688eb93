package domain

import "time"

// Router is a MikroTik device the platform provisions PPPoE users on.
// Online state comes from the platform's connectivity checks.
type Router struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	IPAddress       string     `json:"ip_address"`
	APIPort         int        `json:"api_port"`
	Username        string     `json:"username"`
	Zone            int64      `json:"zone"`
	ZoneName        string     `json:"zone_name"`
	Status          string     `json:"status"`
	StatusDisplay   string     `json:"status_display"`
	IsOnline        bool       `json:"is_online"`
	LastConnectedAt *time.Time `json:"last_connected_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RouterParams is the create/update payload for a router. The API
// password is write-only; the platform never echoes it back.
type RouterParams struct {
	Name      string `json:"name"`
	IPAddress string `json:"ip_address"`
	APIPort   int    `json:"api_port,omitempty"`
	Username  string `json:"username"`
	Password  string `json:"password,omitempty"`
	Zone      int64  `json:"zone,omitempty"`
	Status    string `json:"status,omitempty"`
}

// RouterTestResult is the platform's response to a connectivity probe.
type RouterTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// QueueProfile tracks a package's queue configuration on one router.
type QueueProfile struct {
	ID              int64      `json:"id"`
	Package         int64      `json:"package"`
	PackageName     string     `json:"package_name"`
	Router          int64      `json:"router"`
	RouterName      string     `json:"router_name"`
	MikrotikQueueID string     `json:"mikrotik_queue_id"`
	IsSynced        bool       `json:"is_synced"`
	LastSyncedAt    *time.Time `json:"last_synced_at"`
	SyncError       string     `json:"sync_error"`
	CreatedAt       time.Time  `json:"created_at"`
}

// SyncLog is one entry of the platform's router reconciliation log.
type SyncLog struct {
	ID         int64     `json:"id"`
	Router     int64     `json:"router"`
	RouterName string    `json:"router_name"`
	Action     string    `json:"action"`
	Status     string    `json:"status"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// SyncResult is the platform's response to a package→router sync trigger.
type SyncResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
