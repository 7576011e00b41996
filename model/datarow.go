package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DataRow is a single time-series value inside an instance, tagged with the
// curve type, commodity and scenario it belongs to. Rows sharing
// (curve_type, commodity) within one instance form a freshness group whose
// window supersedes independently of the other groups in the same instance.
type DataRow struct {
	ID             int64           `json:"-"`
	RowID          string          `json:"row_id"`
	InstanceID     string          `json:"instance_id"`
	Timestamp      time.Time       `json:"timestamp"`
	Value          decimal.Decimal `json:"value"`
	CurveType      string          `json:"curve_type"`
	Commodity      string          `json:"commodity"`
	Scenario       string          `json:"scenario"`
	Units          string          `json:"units,omitempty"`
	FreshnessStart time.Time       `json:"freshness_start"`
	FreshnessEnd   *time.Time      `json:"freshness_end,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// GroupKey identifies a freshness group within a definition's instances.
type GroupKey struct {
	CurveType string `json:"curve_type"`
	Commodity string `json:"commodity"`
}

// FreshGroup is the read projection returned per (curve_type, commodity)
// group: the currently open window, the instance that owns it, and how many
// rows it covers.
type FreshGroup struct {
	CurveType      string     `json:"curve_type"`
	Commodity      string     `json:"commodity"`
	InstanceID     string     `json:"instance_id"`
	Version        string     `json:"version"`
	FreshnessStart time.Time  `json:"freshness_start"`
	FreshnessEnd   *time.Time `json:"freshness_end,omitempty"`
	RowCount       int64      `json:"row_count"`
}

// IsCurrent reports whether the group's window is open at the given time.
func (g *FreshGroup) IsCurrent(now time.Time) bool {
	return g.FreshnessEnd == nil || g.FreshnessEnd.After(now)
}
