/*
Copyright 2025 Fathom Energy Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package curvetrace

import (
	"context"
	"fmt"
	"time"

	"github.com/fathomenergy/curvetrace/internal/apierror"
	"github.com/fathomenergy/curvetrace/model"
)

// resolveRunLimit bounds the history scan when resolving a run by ID.
const resolveRunLimit = 500

// ScheduleOutlook is the consumer view of one schedule: where it stands now
// and when the next delivery is expected.
type ScheduleOutlook struct {
	Schedule      model.Schedule `json:"schedule"`
	DisplayStatus string         `json:"display_status"`
	NextDue       *time.Time     `json:"next_due,omitempty"`
	Overdue       bool           `json:"overdue"`
}

func (c *Curvetrace) CreateSchedule(schedule model.Schedule) (model.Schedule, error) {
	return c.datasource.CreateSchedule(schedule)
}

func (c *Curvetrace) GetSchedule(id string) (*model.Schedule, error) {
	return c.datasource.GetScheduleByID(id)
}

func (c *Curvetrace) GetSchedulesByDefinition(definitionID string) ([]model.Schedule, error) {
	return c.datasource.GetSchedulesByDefinition(definitionID)
}

func (c *Curvetrace) GetAllSchedules(limit, offset int) ([]model.Schedule, error) {
	return c.datasource.GetAllSchedules(limit, offset)
}

func (c *Curvetrace) UpdateSchedule(schedule *model.Schedule) error {
	return c.datasource.UpdateSchedule(schedule)
}

func (c *Curvetrace) DeleteSchedule(ctx context.Context, id string) error {
	return c.datasource.DeleteSchedule(ctx, id)
}

// RecordScheduleRun appends an expected or observed delivery event.
func (c *Curvetrace) RecordScheduleRun(run *model.ScheduleRun) (*model.ScheduleRun, error) {
	return c.datasource.RecordScheduleRun(run)
}

// ResolveScheduleRun marks a pending run as delivered, classifying it ON_TIME
// or LATE against its expected timestamp.
func (c *Curvetrace) ResolveScheduleRun(scheduleID, runID string, actualAt time.Time) error {
	runs, err := c.datasource.GetScheduleRuns(scheduleID, resolveRunLimit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		if run.RunID != runID {
			continue
		}
		status := model.RunOnTime
		if actualAt.After(run.ExpectedAt) {
			status = model.RunLate
		}
		return c.datasource.UpdateScheduleRunStatus(runID, status, &actualAt)
	}
	return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Schedule run with ID '%s' not found", runID), nil)
}

func (c *Curvetrace) GetScheduleRuns(scheduleID string, limit int) ([]model.ScheduleRun, error) {
	return c.datasource.GetScheduleRuns(scheduleID, limit)
}

// GetScheduleOutlook computes the display status, next due date and overdue
// flag for every schedule under a definition, from its most recent instance.
// The cadence math is pure; this method only assembles its inputs.
func (c *Curvetrace) GetScheduleOutlook(definitionID string) ([]ScheduleOutlook, error) {
	schedules, err := c.datasource.GetSchedulesByDefinition(definitionID)
	if err != nil {
		return nil, err
	}
	lastInstance, err := c.datasource.GetLastInstance(definitionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	outlooks := make([]ScheduleOutlook, 0, len(schedules))
	for i := range schedules {
		schedule := schedules[i]
		outlook := ScheduleOutlook{
			Schedule:      schedule,
			DisplayStatus: model.DisplayStatus(lastInstance),
			Overdue:       model.IsOverdue(&schedule, lastInstance, now),
		}
		if due := model.NextDue(&schedule, lastInstance); !due.IsZero() {
			outlook.NextDue = &due
		}
		outlooks = append(outlooks, outlook)
	}
	return outlooks, nil
}
