package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package is a bandwidth plan. Bandwidth figures are in Mbps, burst
// figures in kbps, exactly as the platform stores them.
type Package struct {
	ID                     int64           `json:"id"`
	Name                   string          `json:"name"`
	BandwidthDownload      int             `json:"bandwidth_download"`
	BandwidthUpload        int             `json:"bandwidth_upload"`
	Price                  decimal.Decimal `json:"price"`
	ValidityDays           int             `json:"validity_days"`
	Description            string          `json:"description"`
	MikrotikQueueName      string          `json:"mikrotik_queue_name"`
	BurstLimitDownload     int             `json:"burst_limit_download"`
	BurstLimitUpload       int             `json:"burst_limit_upload"`
	BurstThresholdDownload int             `json:"burst_threshold_download"`
	BurstThresholdUpload   int             `json:"burst_threshold_upload"`
	BurstTime              int             `json:"burst_time"`
	Priority               int             `json:"priority"`
	Status                 string          `json:"status"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// PackageParams is the create/update payload for a package.
type PackageParams struct {
	Name              string          `json:"name"`
	BandwidthDownload int             `json:"bandwidth_download"`
	BandwidthUpload   int             `json:"bandwidth_upload"`
	Price             decimal.Decimal `json:"price"`
	ValidityDays      int             `json:"validity_days,omitempty"`
	Description       string          `json:"description,omitempty"`
	MikrotikQueueName string          `json:"mikrotik_queue_name,omitempty"`
	Priority          int             `json:"priority,omitempty"`
	Status            string          `json:"status,omitempty"`
}
