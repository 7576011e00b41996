package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateDefinition struct {
	Market        string                 `json:"market"`
	Location      string                 `json:"location"`
	Product       string                 `json:"product"`
	CurveType     string                 `json:"curve_type"`
	DurationClass string                 `json:"duration_class"`
	Scenario      string                 `json:"scenario"`
	Units         string                 `json:"units"`
	Timezone      string                 `json:"timezone"`
	MetaData      map[string]interface{} `json:"meta_data"`
}

type CreateInstance struct {
	DefinitionID   string                 `json:"definition_id"`
	PeriodStart    time.Time              `json:"period_start"`
	PeriodEnd      time.Time              `json:"period_end"`
	ForecastRunAt  *time.Time             `json:"forecast_run_at"`
	Status         string                 `json:"status"`
	Version        string                 `json:"version"`
	IdempotencyKey string                 `json:"idempotency_key"`
	ChangeType     string                 `json:"change_type"`
	Reason         string                 `json:"reason"`
	Actor          string                 `json:"actor"`
	MetaData       map[string]interface{} `json:"meta_data"`
}

type UpdateInstanceStatus struct {
	Status string `json:"status"`
}

type DataRowInput struct {
	Timestamp time.Time       `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
	CurveType string          `json:"curve_type"`
	Commodity string          `json:"commodity"`
	Scenario  string          `json:"scenario"`
	Units     string          `json:"units"`
}

type IngestDataRows struct {
	Rows []DataRowInput `json:"rows"`
}

type SetGroupFreshness struct {
	CurveType string     `json:"curve_type"`
	Commodity string     `json:"commodity"`
	Start     time.Time  `json:"start"`
	End       *time.Time `json:"end"`
}

type SupersedeGroup struct {
	CurveType string    `json:"curve_type"`
	Commodity string    `json:"commodity"`
	End       time.Time `json:"end"`
}

type MergeRequest struct {
	TempDefinitionID   string `json:"temp_definition_id"`
	TargetDefinitionID string `json:"target_definition_id"`
}
