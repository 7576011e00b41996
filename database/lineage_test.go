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
	"github.com/stretchr/testify/assert"

	"github.com/fathomenergy/curvetrace/internal/apierror"
	"github.com/fathomenergy/curvetrace/model"
)

func TestRecordLineage_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	weight := 0.7
	inputs := []model.LineageRecord{
		{InputType: model.InputWeather, Source: "noaa-gfs", Identifier: "gfs-2025070100", InputVersion: "cycle-00z", InputTimestamp: time.Now(), UsageType: model.UsagePrimary, Weight: &weight},
		{InputType: model.InputDemand, Source: "iso-actuals", Identifier: "ercot-load", InputTimestamp: time.Now(), UsageType: model.UsageValidation},
	}

	mock.ExpectBegin()
	stmt := mock.ExpectPrepare("INSERT INTO curvetrace.lineage_records")
	for range inputs {
		stmt.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	count, err := ds.RecordLineage(context.Background(), "ins_123", inputs)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordLineage_UnknownInputType(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	_, err = ds.RecordLineage(context.Background(), "ins_123", []model.LineageRecord{
		{InputType: "ASTROLOGY", Source: "unknown", UsageType: model.UsagePrimary},
	})
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)
}

func TestRecordLineage_WeightOutOfRange(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	weight := 1.5
	_, err = ds.RecordLineage(context.Background(), "ins_123", []model.LineageRecord{
		{InputType: model.InputModel, Source: "lstm-v4", UsageType: model.UsagePrimary, Weight: &weight},
	})
	assert.Error(t, err)
}

func TestGetLineage_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	now := time.Now()
	rows := sqlmock.NewRows([]string{"lineage_id", "instance_id", "input_type", "source", "identifier", "input_version", "input_timestamp", "usage_type", "weight", "created_at"}).
		AddRow("lin_1", "ins_123", model.InputWeather, "noaa-gfs", "gfs-2025070100", "cycle-00z", now, model.UsagePrimary, 0.7, now).
		AddRow("lin_2", "ins_123", model.InputFuelPrice, "nymex-settle", "ng-prompt", "", now, model.UsageReference, nil, now)

	mock.ExpectQuery("SELECT .* FROM curvetrace.lineage_records").
		WithArgs("ins_123").
		WillReturnRows(rows)

	records, err := ds.GetLineage("ins_123")
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.NotNil(t, records[0].Weight)
	assert.Equal(t, 0.7, *records[0].Weight)
	assert.Nil(t, records[1].Weight)
}

func TestSetDefinitionInputs_ReplacesExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	inputs := []model.DefinitionInput{
		{InputType: model.InputWeather, Source: "noaa-gfs", UsageType: model.UsagePrimary},
		{InputType: model.InputOutage, Source: "iso-outage-feed", UsageType: model.UsageReference},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM curvetrace.definition_inputs").
		WithArgs("def_123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	for range inputs {
		mock.ExpectExec("INSERT INTO curvetrace.definition_inputs").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	err = ds.SetDefinitionInputs(context.Background(), "def_123", inputs)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
