package model

import (
	"math"
	"time"
)

// HealthInput carries everything the scorer needs, supplied explicitly by
// the caller so the computation stays pure and store-free.
type HealthInput struct {
	LastReceived *time.Time
	NextExpected *time.Time
	Now          time.Time
	History      []ScheduleRun
	Quality      *float64
}

// HealthScore is the 0-100 composite of freshness, delivery compliance and
// data quality.
type HealthScore struct {
	Freshness  float64 `json:"freshness"`
	Compliance float64 `json:"compliance"`
	Quality    float64 `json:"quality"`
	Total      int     `json:"total"`
}

// complianceBuckets maps days-late thresholds to per-event scores. The
// breakpoints are a product contract; displayed scores depend on them.
var complianceBuckets = []struct {
	maxDaysLate float64
	score       float64
}{
	{0, 100},
	{1, 90},
	{2, 75},
	{5, 50},
}

func complianceFor(daysLate float64) float64 {
	for _, b := range complianceBuckets {
		if daysLate <= b.maxDaysLate {
			return b.score
		}
	}
	return 25
}

// ComputeHealth scores a curve: freshness is 100 while the next expected
// delivery has not passed and decays 10 points per overdue day; compliance
// averages the bucket score of each completed run in the history window;
// quality is caller-supplied and defaults to 100. Total weights the three
// 40/40/20.
func ComputeHealth(in HealthInput) HealthScore {
	var freshness float64
	switch {
	case in.LastReceived == nil:
		freshness = 0
	case in.NextExpected == nil || !in.Now.After(*in.NextExpected):
		freshness = 100
	default:
		daysOverdue := in.Now.Sub(*in.NextExpected).Hours() / 24
		freshness = math.Max(0, 100-10*daysOverdue)
	}

	var compliance float64
	scored := 0
	for _, run := range in.History {
		if run.ActualAt == nil {
			continue
		}
		compliance += complianceFor(run.DaysLate())
		scored++
	}
	if scored > 0 {
		compliance /= float64(scored)
	}

	quality := 100.0
	if in.Quality != nil {
		quality = math.Min(100, math.Max(0, *in.Quality))
	}

	return HealthScore{
		Freshness:  freshness,
		Compliance: compliance,
		Quality:    quality,
		Total:      int(math.Round(0.4*freshness + 0.4*compliance + 0.2*quality)),
	}
}
