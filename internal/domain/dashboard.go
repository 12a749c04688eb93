package domain

import "github.com/shopspring/decimal"

// Overview is the dashboard headline block.
type Overview struct {
	TotalCustomers      int             `json:"total_customers"`
	ActiveSubscriptions int             `json:"active_subscriptions"`
	TotalDueAmount      decimal.Decimal `json:"total_due_amount"`
	MonthlyRevenue      decimal.Decimal `json:"monthly_revenue"`
}

// QuickStats is the secondary counters row.
type QuickStats struct {
	PendingBills     int `json:"pending_bills"`
	OverdueBills     int `json:"overdue_bills"`
	SuspendedCount   int `json:"suspended_count"`
	OnlineRouters    int `json:"online_routers"`
	OfflineRouters   int `json:"offline_routers"`
	UnsyncedProfiles int `json:"unsynced_profiles"`
}

// GrowthPoint is one month of customer growth.
type GrowthPoint struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// RevenuePoint is one month of collected revenue.
type RevenuePoint struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// Activity is one recent-activity feed entry.
type Activity struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}
