package model

import "time"

type CreateSchedule struct {
	DefinitionID    string    `json:"definition_id"`
	Frequency       string    `json:"frequency"`
	DayOfWeek       *int      `json:"day_of_week"`
	DayOfMonth      *int      `json:"day_of_month"`
	LeadTimeDays    int       `json:"lead_time_days"`
	FreshnessDays   int       `json:"freshness_days"`
	ValidFrom       time.Time `json:"valid_from"`
	ResponsibleTeam string    `json:"responsible_team"`
	Importance      int       `json:"importance"`
}

type UpdateSchedule struct {
	Frequency       string    `json:"frequency"`
	DayOfWeek       *int      `json:"day_of_week"`
	DayOfMonth      *int      `json:"day_of_month"`
	LeadTimeDays    int       `json:"lead_time_days"`
	FreshnessDays   int       `json:"freshness_days"`
	ValidFrom       time.Time `json:"valid_from"`
	ResponsibleTeam string    `json:"responsible_team"`
	Importance      int       `json:"importance"`
}

type RecordScheduleRun struct {
	ExpectedAt time.Time  `json:"expected_at"`
	ActualAt   *time.Time `json:"actual_at"`
	Status     string     `json:"status"`
}

type ResolveScheduleRun struct {
	ActualAt time.Time `json:"actual_at"`
}
