package model

import (
	"errors"
	"time"
)

// Instance lifecycle statuses.
const (
	StatusDraft           = "DRAFT"
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusApproved        = "APPROVED"
	StatusActive          = "ACTIVE"
	StatusSuperseded      = "SUPERSEDED"
	StatusExpired         = "EXPIRED"
	StatusFailed          = "FAILED"
)

// statusTransitions lists the allowed lifecycle moves. A status missing from
// the map is terminal.
var statusTransitions = map[string][]string{
	StatusDraft:           {StatusPendingApproval, StatusApproved, StatusActive, StatusFailed},
	StatusPendingApproval: {StatusApproved, StatusActive, StatusFailed},
	StatusApproved:        {StatusActive, StatusFailed},
	StatusActive:          {StatusSuperseded, StatusExpired, StatusFailed},
}

// Instance is one forecast run of a Definition over a delivery period.
// The delivery period is immutable after creation; status and the
// instance-level freshness window move through supersession.
type Instance struct {
	ID             int64                  `json:"-"`
	InstanceID     string                 `json:"instance_id"`
	DefinitionID   string                 `json:"definition_id"`
	Version        string                 `json:"version"`
	PeriodStart    time.Time              `json:"period_start"`
	PeriodEnd      time.Time              `json:"period_end"`
	ForecastRunAt  time.Time              `json:"forecast_run_at"`
	Status         string                 `json:"status"`
	FreshnessStart time.Time              `json:"freshness_start"`
	FreshnessEnd   *time.Time             `json:"freshness_end,omitempty"`
	IdempotencyKey string                 `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	MetaData       map[string]interface{} `json:"meta_data,omitempty"`
}

// ValidatePeriod checks the delivery period invariant: end strictly after start.
func (i *Instance) ValidatePeriod() error {
	if i.PeriodStart.IsZero() || i.PeriodEnd.IsZero() {
		return errors.New("delivery period start and end are required")
	}
	if !i.PeriodEnd.After(i.PeriodStart) {
		return errors.New("delivery period end must be after start")
	}
	return nil
}

// CanTransitionTo reports whether moving the instance to the given status is
// an allowed lifecycle transition.
func (i *Instance) CanTransitionTo(status string) bool {
	for _, allowed := range statusTransitions[i.Status] {
		if allowed == status {
			return true
		}
	}
	return false
}

// IsFresh reports whether the instance-level freshness window is open at the
// given time. Group-level windows on data rows are authoritative for
// freshness queries; this field is a derived convenience kept in step by
// supersession.
func (i *Instance) IsFresh(now time.Time) bool {
	return i.FreshnessEnd == nil || i.FreshnessEnd.After(now)
}
