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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fathomenergy/curvetrace/model"
)

func TestIngestDataRows(t *testing.T) {
	service, mock := newTestService(t)

	rows := []model.DataRow{
		{Timestamp: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Value: decimal.NewFromFloat(38.25), CurveType: "PRICE", Commodity: "POWER", Scenario: "BASE", Units: "USD/MWh"},
	}

	mock.ExpectQuery("SELECT .* FROM curvetrace.instances").
		WithArgs("ins_123").
		WillReturnRows(testInstanceRow("ins_123", "def_123", "v1", model.StatusActive, time.Now()))
	mock.ExpectBegin()
	stmt := mock.ExpectPrepare("INSERT INTO curvetrace.data_rows")
	stmt.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	count, err := service.IngestDataRows(context.Background(), "ins_123", rows)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetGroupFreshness_PartialRefreshLeavesOtherGroupsOpen(t *testing.T) {
	service, mock := newTestService(t)

	start := time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .* FROM curvetrace.instances").
		WithArgs("ins_new").
		WillReturnRows(testInstanceRow("ins_new", "def_123", "v2", model.StatusActive, start))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT definition_id FROM curvetrace.instances").
		WithArgs("ins_new").
		WillReturnRows(sqlmock.NewRows([]string{"definition_id"}).AddRow("def_123"))
	// Only the PRICE group closes on predecessors; DEMAND windows stay open.
	mock.ExpectExec("UPDATE curvetrace.data_rows").
		WithArgs("def_123", "PRICE", "POWER", start, "ins_new").
		WillReturnResult(sqlmock.NewResult(0, 744))
	mock.ExpectExec("UPDATE curvetrace.data_rows").
		WithArgs("ins_new", start, nil, "PRICE", "POWER").
		WillReturnResult(sqlmock.NewResult(0, 744))
	mock.ExpectCommit()

	err := service.SetGroupFreshness(context.Background(), "ins_new", "PRICE", "POWER", start, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFreshGroups_NoCacheGoesToStore(t *testing.T) {
	service, mock := newTestService(t)

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM curvetrace.data_rows").
		WithArgs("def_123").
		WillReturnRows(sqlmock.NewRows([]string{"curve_type", "commodity", "instance_id", "version", "freshness_start", "freshness_end", "count"}).
			AddRow("PRICE", "POWER", "ins_new", "v2", now, nil, 744))

	groups, err := service.GetFreshGroups(context.Background(), "def_123")
	assert.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.Equal(t, "v2", groups[0].Version)
}
