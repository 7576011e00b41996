package model

import (
	"errors"
	"fmt"
	"time"
)

// Fundamental input types a forecast can be built from.
const (
	InputWeather     = "WEATHER"
	InputDemand      = "DEMAND"
	InputFuelPrice   = "FUEL_PRICE"
	InputMarketPrice = "MARKET_PRICE"
	InputOutage      = "OUTAGE"
	InputPolicy      = "POLICY"
	InputModel       = "MODEL"
)

var inputTypes = map[string]bool{
	InputWeather:     true,
	InputDemand:      true,
	InputFuelPrice:   true,
	InputMarketPrice: true,
	InputOutage:      true,
	InputPolicy:      true,
	InputModel:       true,
}

// How an input was used when building the instance.
const (
	UsagePrimary    = "PRIMARY"
	UsageValidation = "VALIDATION"
	UsageReference  = "REFERENCE"
	UsageFallback   = "FALLBACK"
)

var usageTypes = map[string]bool{
	UsagePrimary:    true,
	UsageValidation: true,
	UsageReference:  true,
	UsageFallback:   true,
}

// LineageRecord links an instance to one external input it consumed.
// Append-only, created with the instance.
type LineageRecord struct {
	ID             int64     `json:"id"`
	LineageID      string    `json:"lineage_id"`
	InstanceID     string    `json:"instance_id"`
	InputType      string    `json:"input_type"`
	Source         string    `json:"source"`
	Identifier     string    `json:"identifier"`
	InputVersion   string    `json:"input_version,omitempty"`
	InputTimestamp time.Time `json:"input_timestamp"`
	UsageType      string    `json:"usage_type"`
	Weight         *float64  `json:"weight,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks enum membership and weight range only. The recorder never
// second-guesses the caller's model composition beyond that.
func (l *LineageRecord) Validate() error {
	if !inputTypes[l.InputType] {
		return fmt.Errorf("unknown input type: %s", l.InputType)
	}
	if !usageTypes[l.UsageType] {
		return fmt.Errorf("unknown usage type: %s", l.UsageType)
	}
	if l.Weight != nil && (*l.Weight < 0 || *l.Weight > 1) {
		return errors.New("weight must be between 0 and 1")
	}
	return nil
}

// DefinitionInput is a default input attached at the definition level; new
// instances inherit these unless the caller records explicit lineage.
// Re-parented to the canonical definition during a merge.
type DefinitionInput struct {
	ID           int64     `json:"id"`
	InputID      string    `json:"input_id"`
	DefinitionID string    `json:"definition_id"`
	InputType    string    `json:"input_type"`
	Source       string    `json:"source"`
	UsageType    string    `json:"usage_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks enum membership for a definition-level default input.
func (d *DefinitionInput) Validate() error {
	if !inputTypes[d.InputType] {
		return fmt.Errorf("unknown input type: %s", d.InputType)
	}
	if !usageTypes[d.UsageType] {
		return fmt.Errorf("unknown usage type: %s", d.UsageType)
	}
	return nil
}
