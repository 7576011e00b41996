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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/fathomenergy/curvetrace/internal/apierror"
	"github.com/fathomenergy/curvetrace/model"
)

func TestCreateSchedule_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	dayOfMonth := 5
	schedule := model.Schedule{
		DefinitionID:    "def_123",
		Frequency:       model.FrequencyMonthly,
		DayOfMonth:      &dayOfMonth,
		LeadTimeDays:    3,
		FreshnessDays:   30,
		ValidFrom:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ResponsibleTeam: "market-analytics",
		Importance:      4,
	}

	mock.ExpectExec("INSERT INTO curvetrace.schedules").
		WithArgs(sqlmock.AnyArg(), schedule.DefinitionID, schedule.Frequency, nil, dayOfMonth,
			schedule.LeadTimeDays, schedule.FreshnessDays, schedule.ValidFrom, schedule.ResponsibleTeam, schedule.Importance, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := ds.CreateSchedule(schedule)
	assert.NoError(t, err)
	assert.Contains(t, created.ScheduleID, "sch_")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSchedule_InvalidImportance(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	_, err = ds.CreateSchedule(model.Schedule{
		DefinitionID: "def_123",
		Frequency:    model.FrequencyDaily,
		Importance:   9,
	})
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)
}

func TestCreateSchedule_UnknownDefinition(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("INSERT INTO curvetrace.schedules").
		WillReturnError(&pq.Error{Code: "23503"})

	_, err = ds.CreateSchedule(model.Schedule{
		DefinitionID: "def_missing",
		Frequency:    model.FrequencyDaily,
		Importance:   3,
	})
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrBadRequest, apiErr.Code)
}

func TestGetScheduleByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	rows := sqlmock.NewRows([]string{"schedule_id", "definition_id", "frequency", "day_of_week", "day_of_month", "lead_time_days", "freshness_days", "valid_from", "responsible_team", "importance", "created_at"}).
		AddRow("sch_123", "def_123", model.FrequencyWeekly, 1, nil, 2, 7, time.Now(), "ops", 3, time.Now())

	mock.ExpectQuery("SELECT .* FROM curvetrace.schedules WHERE schedule_id").
		WithArgs("sch_123").
		WillReturnRows(rows)

	schedule, err := ds.GetScheduleByID("sch_123")
	assert.NoError(t, err)
	assert.Equal(t, model.FrequencyWeekly, schedule.Frequency)
	assert.NotNil(t, schedule.DayOfWeek)
	assert.Equal(t, 1, *schedule.DayOfWeek)
	assert.Nil(t, schedule.DayOfMonth)
}

func TestDeleteSchedule_RemovesRunsFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM curvetrace.schedule_runs").
		WithArgs("sch_123").
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec("DELETE FROM curvetrace.schedules").
		WithArgs("sch_123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = ds.DeleteSchedule(context.Background(), "sch_123")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordScheduleRun_DefaultsToPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("INSERT INTO curvetrace.schedule_runs").
		WithArgs(sqlmock.AnyArg(), "sch_123", sqlmock.AnyArg(), nil, model.RunPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run, err := ds.RecordScheduleRun(&model.ScheduleRun{
		ScheduleID: "sch_123",
		ExpectedAt: time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)
	assert.Equal(t, model.RunPending, run.Status)
	assert.Contains(t, run.RunID, "run_")
}

func TestUpdateScheduleRunStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	actual := time.Now()
	mock.ExpectExec("UPDATE curvetrace.schedule_runs").
		WithArgs("run_missing", model.RunLate, actual).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.UpdateScheduleRunStatus("run_missing", model.RunLate, &actual)
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestGetScheduleRuns_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	now := time.Now()
	rows := sqlmock.NewRows([]string{"run_id", "schedule_id", "expected_at", "actual_at", "status", "created_at"}).
		AddRow("run_2", "sch_123", now, now.Add(2*time.Hour), model.RunOnTime, now).
		AddRow("run_1", "sch_123", now.Add(-7*24*time.Hour), nil, model.RunPending, now)

	mock.ExpectQuery("SELECT .* FROM curvetrace.schedule_runs").
		WithArgs("sch_123", 10).
		WillReturnRows(rows)

	runs, err := ds.GetScheduleRuns("sch_123", 10)
	assert.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.NotNil(t, runs[0].ActualAt)
	assert.Nil(t, runs[1].ActualAt)
}
