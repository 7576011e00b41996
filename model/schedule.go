package model

import (
	"errors"
	"time"
)

// Schedule frequencies.
const (
	FrequencyHourly    = "HOURLY"
	FrequencyDaily     = "DAILY"
	FrequencyWeekly    = "WEEKLY"
	FrequencyMonthly   = "MONTHLY"
	FrequencyQuarterly = "QUARTERLY"
	FrequencyAnnually  = "ANNUALLY"
	FrequencyOnDemand  = "ON_DEMAND"
)

var frequencies = map[string]bool{
	FrequencyHourly:    true,
	FrequencyDaily:     true,
	FrequencyWeekly:    true,
	FrequencyMonthly:   true,
	FrequencyQuarterly: true,
	FrequencyAnnually:  true,
	FrequencyOnDemand:  true,
}

// Schedule display statuses.
const (
	ScheduleStatusPending    = "PENDING"
	ScheduleStatusInProgress = "IN_PROGRESS"
	ScheduleStatusScheduled  = "SCHEDULED"
	ScheduleStatusCompleted  = "COMPLETED"
	ScheduleStatusSuperseded = "SUPERSEDED"
	ScheduleStatusFailed     = "FAILED"
)

// ScheduleRun statuses.
const (
	RunOnTime  = "ON_TIME"
	RunLate    = "LATE"
	RunPending = "PENDING"
)

// Schedule is the cadence specification attached to a Definition: how often
// its curve should be refreshed, who owns it, and how important it is.
type Schedule struct {
	ID              int64     `json:"-"`
	ScheduleID      string    `json:"schedule_id"`
	DefinitionID    string    `json:"definition_id"`
	Frequency       string    `json:"frequency"`
	DayOfWeek       *int      `json:"day_of_week,omitempty"`
	DayOfMonth      *int      `json:"day_of_month,omitempty"`
	LeadTimeDays    int       `json:"lead_time_days"`
	FreshnessDays   int       `json:"freshness_days"`
	ValidFrom       time.Time `json:"valid_from"`
	ResponsibleTeam string    `json:"responsible_team"`
	Importance      int       `json:"importance"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate checks frequency membership, anchor ranges and importance bounds.
func (s *Schedule) Validate() error {
	if !frequencies[s.Frequency] {
		return errors.New("unknown schedule frequency: " + s.Frequency)
	}
	if s.DayOfWeek != nil && (*s.DayOfWeek < 0 || *s.DayOfWeek > 6) {
		return errors.New("day_of_week must be between 0 (Sunday) and 6")
	}
	if s.DayOfMonth != nil && (*s.DayOfMonth < 1 || *s.DayOfMonth > 31) {
		return errors.New("day_of_month must be between 1 and 31")
	}
	if s.Importance < 1 || s.Importance > 5 {
		return errors.New("importance must be between 1 and 5")
	}
	if s.LeadTimeDays < 0 || s.FreshnessDays < 0 {
		return errors.New("lead_time_days and freshness_days must not be negative")
	}
	return nil
}

// ScheduleRun records one expected or observed delivery event for a
// schedule. Append-only except for the status transition once the actual
// delivery lands.
type ScheduleRun struct {
	ID         int64      `json:"id"`
	RunID      string     `json:"run_id"`
	ScheduleID string     `json:"schedule_id"`
	ExpectedAt time.Time  `json:"expected_at"`
	ActualAt   *time.Time `json:"actual_at,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}

// DaysLate returns how many days past the expected timestamp the run
// actually landed. Negative or zero means on time.
func (r *ScheduleRun) DaysLate() float64 {
	if r.ActualAt == nil {
		return 0
	}
	return r.ActualAt.Sub(r.ExpectedAt).Hours() / 24
}

// NextDue computes when the next delivery is expected. With no prior
// instance the schedule has never fired, so the first delivery is due
// LeadTimeDays after ValidFrom. Otherwise the cadence interval is added to
// the last forecast run, then snapped to the optional day-of-week or
// day-of-month anchor. Pure function over explicit inputs; safe for
// concurrent readers.
func NextDue(s *Schedule, lastInstance *Instance) time.Time {
	if lastInstance == nil {
		return s.ValidFrom.AddDate(0, 0, s.LeadTimeDays)
	}
	base := lastInstance.ForecastRunAt
	var next time.Time
	switch s.Frequency {
	case FrequencyHourly:
		next = base.Add(time.Hour)
	case FrequencyDaily:
		next = base.AddDate(0, 0, 1)
	case FrequencyWeekly:
		next = base.AddDate(0, 0, 7)
	case FrequencyMonthly:
		next = base.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		next = base.AddDate(0, 3, 0)
	case FrequencyAnnually:
		next = base.AddDate(1, 0, 0)
	default: // ON_DEMAND has no cadence
		return time.Time{}
	}
	return snapToAnchor(s, next)
}

// snapToAnchor moves a due date forward onto the schedule's anchor day, if
// one is set. Weekly schedules anchor to a weekday, monthly and slower
// cadences to a day of month (clamped to the month's length).
func snapToAnchor(s *Schedule, t time.Time) time.Time {
	switch s.Frequency {
	case FrequencyWeekly:
		if s.DayOfWeek != nil {
			offset := (*s.DayOfWeek - int(t.Weekday()) + 7) % 7
			return t.AddDate(0, 0, offset)
		}
	case FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually:
		if s.DayOfMonth != nil {
			day := *s.DayOfMonth
			lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
			if day > lastDay {
				day = lastDay
			}
			return time.Date(t.Year(), t.Month(), day, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
		}
	}
	return t
}

// IsOverdue reports whether the schedule has missed its expected delivery,
// allowing LeadTimeDays of grace past the due date. ON_DEMAND schedules are
// never overdue.
func IsOverdue(s *Schedule, lastInstance *Instance, now time.Time) bool {
	if s.Frequency == FrequencyOnDemand {
		return false
	}
	due := NextDue(s, lastInstance)
	if due.IsZero() {
		return false
	}
	return now.After(due.AddDate(0, 0, s.LeadTimeDays))
}

// displayStatus maps a last-instance lifecycle status to the schedule status
// shown to consumers. Table-driven so every caller shares one source of
// truth.
var displayStatus = map[string]string{
	StatusDraft:           ScheduleStatusInProgress,
	StatusPendingApproval: ScheduleStatusScheduled,
	StatusApproved:        ScheduleStatusScheduled,
	StatusActive:          ScheduleStatusCompleted,
	StatusSuperseded:      ScheduleStatusSuperseded,
	StatusExpired:         ScheduleStatusSuperseded,
	StatusFailed:          ScheduleStatusFailed,
}

// DisplayStatus classifies a schedule for presentation from its last
// instance. No instance at all means the schedule is still PENDING its
// first delivery.
func DisplayStatus(lastInstance *Instance) string {
	if lastInstance == nil {
		return ScheduleStatusPending
	}
	if status, ok := displayStatus[lastInstance.Status]; ok {
		return status
	}
	return ScheduleStatusPending
}
