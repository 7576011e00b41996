package model

import "time"

type LineageInput struct {
	InputType      string    `json:"input_type"`
	Source         string    `json:"source"`
	Identifier     string    `json:"identifier"`
	InputVersion   string    `json:"input_version"`
	InputTimestamp time.Time `json:"input_timestamp"`
	UsageType      string    `json:"usage_type"`
	Weight         *float64  `json:"weight"`
}

type RecordLineage struct {
	Inputs []LineageInput `json:"inputs"`
}

type DefinitionInputItem struct {
	InputType string `json:"input_type"`
	Source    string `json:"source"`
	UsageType string `json:"usage_type"`
}

type SetDefinitionInputs struct {
	Inputs []DefinitionInputItem `json:"inputs"`
}
