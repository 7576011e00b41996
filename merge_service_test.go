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
	"github.com/stretchr/testify/assert"
)

func expectMergeLockAndScope(mock sqlmock.Sqlmock, tempRows, targetRows *sqlmock.Rows) {
	mock.ExpectQuery("SELECT definition_id FROM curvetrace.definitions").
		WithArgs("def_canonical").
		WillReturnRows(sqlmock.NewRows([]string{"definition_id"}).AddRow("def_canonical"))
	mock.ExpectQuery("SELECT definition_id FROM curvetrace.definitions").
		WithArgs("def_temp").
		WillReturnRows(sqlmock.NewRows([]string{"definition_id"}).AddRow("def_temp"))
	mock.ExpectQuery("SELECT instance_id, period_start, version").
		WithArgs("def_temp").
		WillReturnRows(tempRows)
	mock.ExpectQuery("SELECT period_start, version").
		WithArgs("def_canonical").
		WillReturnRows(targetRows)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("def_temp").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("def_temp").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
}

func TestMergeDefinitions_RetriesAfterDeadlock(t *testing.T) {
	service, mock := newTestService(t)

	july := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	// First attempt deadlocks while locking.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT definition_id FROM curvetrace.definitions").
		WithArgs("def_canonical").
		WillReturnError(newSerializationFailure())
	mock.ExpectRollback()

	// Second attempt commits the full fold.
	tempRows := sqlmock.NewRows([]string{"instance_id", "period_start", "version"}).
		AddRow("ins_t1", july, "v1")
	targetRows := sqlmock.NewRows([]string{"period_start", "version"})
	mock.ExpectBegin()
	expectMergeLockAndScope(mock, tempRows, targetRows)
	mock.ExpectExec("UPDATE curvetrace.instances SET definition_id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE curvetrace.schedules SET definition_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE curvetrace.definition_inputs SET definition_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM curvetrace.definitions").
		WithArgs("def_temp").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := service.MergeDefinitions(context.Background(), "def_temp", "def_canonical")
	assert.NoError(t, err)
	assert.Equal(t, 1, result.InstancesMoved)
	assert.Empty(t, result.Renames)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreviewMerge_DelegatesWithoutMutation(t *testing.T) {
	service, mock := newTestService(t)

	july := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	tempRows := sqlmock.NewRows([]string{"instance_id", "period_start", "version"}).
		AddRow("ins_t1", july, "v1")
	targetRows := sqlmock.NewRows([]string{"period_start", "version"}).
		AddRow(july, "v1")

	mock.ExpectBegin()
	expectMergeLockAndScope(mock, tempRows, targetRows)
	mock.ExpectRollback()

	plan, err := service.PreviewMerge(context.Background(), "def_temp", "def_canonical")
	assert.NoError(t, err)
	assert.Len(t, plan.Renames, 1)
	assert.Equal(t, "v1-m1", plan.Renames[0].NewVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}
