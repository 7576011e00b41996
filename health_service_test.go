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
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"

	"github.com/fathomenergy/curvetrace/config"
	"github.com/fathomenergy/curvetrace/database"
	"github.com/fathomenergy/curvetrace/internal/cache"
	"github.com/fathomenergy/curvetrace/model"
)

func TestDefinitionHealth_HealthyCurve(t *testing.T) {
	service, mock := newTestService(t)

	validFrom := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lastRun := time.Now().AddDate(0, 0, -5)
	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM curvetrace.instances").
		WithArgs("def_123").
		WillReturnRows(testInstanceRow("ins_1", "def_123", "v3", model.StatusActive, lastRun))
	mock.ExpectQuery("SELECT .* FROM curvetrace.schedules").
		WithArgs("def_123").
		WillReturnRows(sqlmock.NewRows(testScheduleColumns).
			AddRow("sch_123", "def_123", model.FrequencyMonthly, nil, nil, 3, 30, validFrom, "market-analytics", 4, validFrom))
	mock.ExpectQuery("SELECT .* FROM curvetrace.schedule_runs").
		WithArgs("sch_123", healthHistoryWindow).
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "schedule_id", "expected_at", "actual_at", "status", "created_at"}).
			AddRow("run_2", "sch_123", now.AddDate(0, -1, 0), now.AddDate(0, -1, 0), model.RunOnTime, now).
			AddRow("run_1", "sch_123", now.AddDate(0, -2, 0), now.AddDate(0, -2, 0).Add(12*time.Hour), model.RunLate, now))

	score, err := service.DefinitionHealth(context.Background(), "def_123", nil)
	assert.NoError(t, err)
	// Next delivery a month out: full freshness. One on-time and one
	// half-day-late run average to 95. Quality defaults to 100.
	assert.Equal(t, float64(100), score.Freshness)
	assert.Equal(t, float64(95), score.Compliance)
	assert.Equal(t, float64(100), score.Quality)
	assert.Equal(t, 98, score.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDefinitionHealth_NeverDelivered(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery("SELECT .* FROM curvetrace.instances").
		WithArgs("def_123").
		WillReturnRows(sqlmock.NewRows(testInstanceColumns))
	mock.ExpectQuery("SELECT .* FROM curvetrace.schedules").
		WithArgs("def_123").
		WillReturnRows(sqlmock.NewRows(testScheduleColumns))

	score, err := service.DefinitionHealth(context.Background(), "def_123", nil)
	assert.NoError(t, err)
	assert.Equal(t, float64(0), score.Freshness)
	assert.Equal(t, float64(0), score.Compliance)
	assert.Equal(t, 20, score.Total)
}

func TestDefinitionHealth_QualityClamped(t *testing.T) {
	service, mock := newTestService(t)

	quality := 140.0

	mock.ExpectQuery("SELECT .* FROM curvetrace.instances").
		WithArgs("def_123").
		WillReturnRows(testInstanceRow("ins_1", "def_123", "v1", model.StatusActive, time.Now()))
	mock.ExpectQuery("SELECT .* FROM curvetrace.schedules").
		WithArgs("def_123").
		WillReturnRows(sqlmock.NewRows(testScheduleColumns))

	score, err := service.DefinitionHealth(context.Background(), "def_123", &quality)
	assert.NoError(t, err)
	assert.Equal(t, float64(100), score.Quality)
}

func TestDefinitionHealth_ServesCachedZeroScore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("an error '%s' occurred when starting miniredis", err)
	}
	t.Cleanup(mr.Close)

	config.MockConfig(&config.Configuration{Redis: config.RedisConfig{Dns: mr.Addr()}})
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service, err := NewCurvetrace(&database.Datasource{Conn: db})
	assert.NoError(t, err)

	ctx := context.Background()
	// A fully zero score is a legitimate cached value; a hit must be served
	// as-is, not treated as a miss and recomputed from the store.
	err = service.cache.Set(ctx, cache.Key("health", "def_123"), model.HealthScore{}, healthTTL)
	assert.NoError(t, err)

	score, err := service.DefinitionHealth(ctx, "def_123", nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, score.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
