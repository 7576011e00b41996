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

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/fathomenergy/curvetrace/internal/apierror"
	"github.com/fathomenergy/curvetrace/model"
)

const scheduleFields = `schedule_id, definition_id, frequency, day_of_week, day_of_month, lead_time_days, freshness_days, valid_from, responsible_team, importance, created_at`

func scanSchedule(row interface{ Scan(...interface{}) error }) (*model.Schedule, error) {
	schedule := &model.Schedule{}
	var dayOfWeek, dayOfMonth sql.NullInt64
	err := row.Scan(&schedule.ScheduleID, &schedule.DefinitionID, &schedule.Frequency, &dayOfWeek, &dayOfMonth,
		&schedule.LeadTimeDays, &schedule.FreshnessDays, &schedule.ValidFrom, &schedule.ResponsibleTeam,
		&schedule.Importance, &schedule.CreatedAt)
	if err != nil {
		return nil, err
	}
	if dayOfWeek.Valid {
		v := int(dayOfWeek.Int64)
		schedule.DayOfWeek = &v
	}
	if dayOfMonth.Valid {
		v := int(dayOfMonth.Int64)
		schedule.DayOfMonth = &v
	}
	return schedule, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// CreateSchedule attaches a cadence specification to a definition.
func (d Datasource) CreateSchedule(schedule model.Schedule) (model.Schedule, error) {
	if err := schedule.Validate(); err != nil {
		return model.Schedule{}, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	schedule.ScheduleID = model.GenerateUUIDWithSuffix("sch")
	schedule.CreatedAt = time.Now()

	_, err := d.Conn.Exec(`
		INSERT INTO curvetrace.schedules (schedule_id, definition_id, frequency, day_of_week, day_of_month, lead_time_days, freshness_days, valid_from, responsible_team, importance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, schedule.ScheduleID, schedule.DefinitionID, schedule.Frequency, nullableInt(schedule.DayOfWeek), nullableInt(schedule.DayOfMonth),
		schedule.LeadTimeDays, schedule.FreshnessDays, schedule.ValidFrom, schedule.ResponsibleTeam, schedule.Importance, schedule.CreatedAt)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code.Name() == "foreign_key_violation" {
			return model.Schedule{}, apierror.NewAPIError(apierror.ErrBadRequest, "Invalid definition ID", err)
		}
		return model.Schedule{}, apierror.MapSQLError(err, "")
	}

	return schedule, nil
}

// GetScheduleByID retrieves a schedule by its ID.
func (d Datasource) GetScheduleByID(id string) (*model.Schedule, error) {
	row := d.Conn.QueryRow(`
		SELECT `+scheduleFields+`
		FROM curvetrace.schedules
		WHERE schedule_id = $1
	`, id)

	schedule, err := scanSchedule(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Schedule with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve schedule", err)
	}
	return schedule, nil
}

// GetSchedulesByDefinition retrieves every schedule under a definition.
func (d Datasource) GetSchedulesByDefinition(definitionID string) ([]model.Schedule, error) {
	rows, err := d.Conn.Query(`
		SELECT `+scheduleFields+`
		FROM curvetrace.schedules
		WHERE definition_id = $1
		ORDER BY created_at ASC
	`, definitionID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve schedules", err)
	}
	defer rows.Close()

	schedules := []model.Schedule{}
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan schedule", err)
		}
		schedules = append(schedules, *schedule)
	}
	return schedules, nil
}

// GetAllSchedules retrieves schedules ordered by creation time.
func (d Datasource) GetAllSchedules(limit, offset int) ([]model.Schedule, error) {
	rows, err := d.Conn.Query(`
		SELECT `+scheduleFields+`
		FROM curvetrace.schedules
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve schedules", err)
	}
	defer rows.Close()

	schedules := []model.Schedule{}
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan schedule", err)
		}
		schedules = append(schedules, *schedule)
	}
	return schedules, nil
}

// UpdateSchedule edits a schedule's cadence fields.
func (d Datasource) UpdateSchedule(schedule *model.Schedule) error {
	if err := schedule.Validate(); err != nil {
		return apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	result, err := d.Conn.Exec(`
		UPDATE curvetrace.schedules
		SET frequency = $2, day_of_week = $3, day_of_month = $4, lead_time_days = $5, freshness_days = $6, valid_from = $7, responsible_team = $8, importance = $9
		WHERE schedule_id = $1
	`, schedule.ScheduleID, schedule.Frequency, nullableInt(schedule.DayOfWeek), nullableInt(schedule.DayOfMonth),
		schedule.LeadTimeDays, schedule.FreshnessDays, schedule.ValidFrom, schedule.ResponsibleTeam, schedule.Importance)
	if err != nil {
		return apierror.MapSQLError(err, "")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check update result", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Schedule with ID '%s' not found", schedule.ScheduleID), nil)
	}
	return nil
}

// DeleteSchedule removes a schedule and its run history in one transaction.
func (d Datasource) DeleteSchedule(ctx context.Context, id string) error {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM curvetrace.schedule_runs WHERE schedule_id = $1`, id); err != nil {
		_ = tx.Rollback()
		return apierror.MapSQLError(err, "")
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM curvetrace.schedules WHERE schedule_id = $1`, id)
	if err != nil {
		_ = tx.Rollback()
		return apierror.MapSQLError(err, "")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check deletion result", err)
	}
	if rowsAffected == 0 {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Schedule with ID '%s' not found", id), nil)
	}

	if err := tx.Commit(); err != nil {
		return apierror.MapSQLError(err, "")
	}
	return nil
}

// RecordScheduleRun appends a delivery event to a schedule's history.
func (d Datasource) RecordScheduleRun(run *model.ScheduleRun) (*model.ScheduleRun, error) {
	if run.Status == "" {
		run.Status = model.RunPending
	}
	run.RunID = model.GenerateUUIDWithSuffix("run")
	run.CreatedAt = time.Now()

	var actualAt interface{}
	if run.ActualAt != nil {
		actualAt = *run.ActualAt
	}
	_, err := d.Conn.Exec(`
		INSERT INTO curvetrace.schedule_runs (run_id, schedule_id, expected_at, actual_at, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, run.RunID, run.ScheduleID, run.ExpectedAt, actualAt, run.Status, run.CreatedAt)
	if err != nil {
		return nil, apierror.MapSQLError(err, "")
	}
	return run, nil
}

// UpdateScheduleRunStatus resolves a run once the actual delivery lands.
// Runs are append-only apart from this status transition.
func (d Datasource) UpdateScheduleRunStatus(id string, status string, actualAt *time.Time) error {
	var actual interface{}
	if actualAt != nil {
		actual = *actualAt
	}
	result, err := d.Conn.Exec(`
		UPDATE curvetrace.schedule_runs
		SET status = $2, actual_at = COALESCE($3, actual_at)
		WHERE run_id = $1
	`, id, status, actual)
	if err != nil {
		return apierror.MapSQLError(err, "")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check run update result", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Schedule run with ID '%s' not found", id), nil)
	}
	return nil
}

// GetScheduleRuns retrieves a schedule's most recent runs.
func (d Datasource) GetScheduleRuns(scheduleID string, limit int) ([]model.ScheduleRun, error) {
	rows, err := d.Conn.Query(`
		SELECT run_id, schedule_id, expected_at, actual_at, status, created_at
		FROM curvetrace.schedule_runs
		WHERE schedule_id = $1
		ORDER BY expected_at DESC
		LIMIT $2
	`, scheduleID, limit)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve schedule runs", err)
	}
	defer rows.Close()

	runs := []model.ScheduleRun{}
	for rows.Next() {
		run := model.ScheduleRun{}
		var actualAt sql.NullTime
		err := rows.Scan(&run.RunID, &run.ScheduleID, &run.ExpectedAt, &actualAt, &run.Status, &run.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan schedule run", err)
		}
		if actualAt.Valid {
			actual := actualAt.Time
			run.ActualAt = &actual
		}
		runs = append(runs, run)
	}
	return runs, nil
}
