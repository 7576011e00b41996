package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptrTime(t time.Time) *time.Time { return &t }

func ptrFloat(f float64) *float64 { return &f }

func runAt(expected time.Time, daysLate float64) ScheduleRun {
	actual := expected.Add(time.Duration(daysLate * 24 * float64(time.Hour)))
	return ScheduleRun{ExpectedAt: expected, ActualAt: &actual, Status: RunOnTime}
}

func TestComputeHealth_PerfectScore(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	score := ComputeHealth(HealthInput{
		LastReceived: ptrTime(now.AddDate(0, 0, -1)),
		NextExpected: ptrTime(now.AddDate(0, 0, 1)),
		Now:          now,
		History:      []ScheduleRun{runAt(now.AddDate(0, -1, 0), 0)},
	})
	assert.Equal(t, 100.0, score.Freshness)
	assert.Equal(t, 100.0, score.Compliance)
	assert.Equal(t, 100.0, score.Quality)
	assert.Equal(t, 100, score.Total)
}

func TestComputeHealth_FreshnessDecay(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	in := HealthInput{
		LastReceived: ptrTime(now.AddDate(0, 0, -10)),
		Now:          now,
	}

	in.NextExpected = ptrTime(now.AddDate(0, 0, -3))
	threeDays := ComputeHealth(in)
	assert.Equal(t, 70.0, threeDays.Freshness)

	in.NextExpected = ptrTime(now.AddDate(0, 0, -5))
	fiveDays := ComputeHealth(in)
	assert.Equal(t, 50.0, fiveDays.Freshness)

	// Monotonically non-increasing in days overdue.
	assert.LessOrEqual(t, fiveDays.Freshness, threeDays.Freshness)

	// Floor at zero far past due.
	in.NextExpected = ptrTime(now.AddDate(0, -6, 0))
	assert.Equal(t, 0.0, ComputeHealth(in).Freshness)
}

func TestComputeHealth_NoDeliveriesEver(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	score := ComputeHealth(HealthInput{Now: now})
	assert.Equal(t, 0.0, score.Freshness)
	assert.Equal(t, 0.0, score.Compliance)
	assert.Equal(t, 100.0, score.Quality)
	assert.Equal(t, 20, score.Total)
}

func TestComputeHealth_ComplianceBuckets(t *testing.T) {
	expected := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		daysLate float64
		want     float64
	}{
		{-1, 100},
		{0, 100},
		{0.5, 90},
		{1, 90},
		{1.5, 75},
		{2, 75},
		{4, 50},
		{5, 50},
		{6, 25},
		{30, 25},
	}
	for _, tt := range tests {
		score := ComputeHealth(HealthInput{
			LastReceived: ptrTime(expected),
			Now:          expected,
			History:      []ScheduleRun{runAt(expected, tt.daysLate)},
		})
		assert.Equal(t, tt.want, score.Compliance, "daysLate=%v", tt.daysLate)
	}
}

func TestComputeHealth_PendingRunsIgnored(t *testing.T) {
	expected := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	score := ComputeHealth(HealthInput{
		LastReceived: ptrTime(expected),
		Now:          expected,
		History: []ScheduleRun{
			runAt(expected, 0),
			{ExpectedAt: expected.AddDate(0, 1, 0), Status: RunPending},
		},
	})
	assert.Equal(t, 100.0, score.Compliance)
}

func TestComputeHealth_QualityClampAndWeighting(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	in := HealthInput{
		LastReceived: ptrTime(now),
		NextExpected: ptrTime(now.AddDate(0, 0, 1)),
		Now:          now,
		History:      []ScheduleRun{runAt(now.AddDate(0, -1, 0), 0)},
		Quality:      ptrFloat(50),
	}
	score := ComputeHealth(in)
	assert.Equal(t, 50.0, score.Quality)
	// 0.4*100 + 0.4*100 + 0.2*50 = 90
	assert.Equal(t, 90, score.Total)

	in.Quality = ptrFloat(150)
	assert.Equal(t, 100.0, ComputeHealth(in).Quality)
}
