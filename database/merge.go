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

	"github.com/sirupsen/logrus"

	"github.com/fathomenergy/curvetrace/internal/apierror"
	"github.com/fathomenergy/curvetrace/model"
)

// mergeScope holds everything a merge inspects while both definitions are
// locked: the temp definition's instances plus the version labels already
// taken per period on the target side.
type mergeScope struct {
	instances     []mergeInstance
	schedules     int
	defaultInputs int
	taken         map[string]map[string]bool // period start -> version -> taken
}

type mergeInstance struct {
	instanceID  string
	periodStart time.Time
	version     string
}

func periodKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func loadMergeScope(ctx context.Context, tx *sql.Tx, tempID, targetID string) (*mergeScope, error) {
	scope := &mergeScope{taken: map[string]map[string]bool{}}

	rows, err := tx.QueryContext(ctx, `
		SELECT instance_id, period_start, version
		FROM curvetrace.instances
		WHERE definition_id = $1
		ORDER BY created_at ASC
		FOR UPDATE
	`, tempID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		inst := mergeInstance{}
		if err := rows.Scan(&inst.instanceID, &inst.periodStart, &inst.version); err != nil {
			return nil, err
		}
		scope.instances = append(scope.instances, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	targetRows, err := tx.QueryContext(ctx, `
		SELECT period_start, version
		FROM curvetrace.instances
		WHERE definition_id = $1
		FOR UPDATE
	`, targetID)
	if err != nil {
		return nil, err
	}
	defer targetRows.Close()
	for targetRows.Next() {
		var periodStart time.Time
		var version string
		if err := targetRows.Scan(&periodStart, &version); err != nil {
			return nil, err
		}
		key := periodKey(periodStart)
		if scope.taken[key] == nil {
			scope.taken[key] = map[string]bool{}
		}
		scope.taken[key][version] = true
	}
	if err := targetRows.Err(); err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM curvetrace.schedules WHERE definition_id = $1`, tempID).Scan(&scope.schedules)
	if err != nil {
		return nil, err
	}
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM curvetrace.definition_inputs WHERE definition_id = $1`, tempID).Scan(&scope.defaultInputs)
	if err != nil {
		return nil, err
	}
	return scope, nil
}

// planRenames walks the temp definition's instances in creation order and
// picks a free label for each collision with the target side. Renamed labels
// take the form <label>-m<n>; the chosen label is then marked taken so two
// temp instances cannot race each other onto the same name.
func (s *mergeScope) planRenames() []model.VersionRename {
	renames := []model.VersionRename{}
	for _, inst := range s.instances {
		key := periodKey(inst.periodStart)
		if s.taken[key] == nil {
			s.taken[key] = map[string]bool{}
		}
		if !s.taken[key][inst.version] {
			s.taken[key][inst.version] = true
			continue
		}
		n := 1
		candidate := fmt.Sprintf("%s-m%d", inst.version, n)
		for s.taken[key][candidate] {
			n++
			candidate = fmt.Sprintf("%s-m%d", inst.version, n)
		}
		s.taken[key][candidate] = true
		renames = append(renames, model.VersionRename{
			InstanceID: inst.instanceID,
			OldVersion: inst.version,
			NewVersion: candidate,
		})
	}
	return renames
}

// lockDefinitions takes row locks on both definitions in a fixed order so
// two concurrent merges over the same pair cannot deadlock each other.
func lockDefinitions(ctx context.Context, tx *sql.Tx, tempID, targetID string) error {
	first, second := tempID, targetID
	if second < first {
		first, second = second, first
	}
	for _, id := range []string{first, second} {
		var found string
		err := tx.QueryRowContext(ctx, `
			SELECT definition_id FROM curvetrace.definitions WHERE definition_id = $1 FOR UPDATE
		`, id).Scan(&found)
		if err != nil {
			if err == sql.ErrNoRows {
				return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Definition with ID '%s' not found", id), err)
			}
			return apierror.MapSQLError(err, "")
		}
	}
	return nil
}

// PreviewMerge computes what MergeDefinitions would do, without mutating.
// It runs in a transaction that is always rolled back so the counts and
// renames are consistent with a snapshot of both definitions.
func (d Datasource) PreviewMerge(ctx context.Context, tempID, targetID string) (*model.MergePlan, error) {
	if tempID == targetID {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "cannot merge a definition into itself", nil)
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockDefinitions(ctx, tx, tempID, targetID); err != nil {
		return nil, err
	}
	scope, err := loadMergeScope(ctx, tx, tempID, targetID)
	if err != nil {
		return nil, apierror.MapSQLError(err, "")
	}

	return &model.MergePlan{
		TempDefinitionID:   tempID,
		TargetDefinitionID: targetID,
		Instances:          len(scope.instances),
		Schedules:          scope.schedules,
		DefaultInputs:      scope.defaultInputs,
		Renames:            scope.planRenames(),
	}, nil
}

// MergeDefinitions folds a temporary duplicate definition into its canonical
// target in one transaction: colliding version labels are renamed first so
// the unique constraint on (definition, period, version) cannot fire, then
// instances, schedules and default inputs are re-parented and the temp
// definition is deleted. Either everything moves or nothing does.
func (d Datasource) MergeDefinitions(ctx context.Context, tempID, targetID string) (*model.MergeResult, error) {
	if tempID == targetID {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "cannot merge a definition into itself", nil)
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	if err := lockDefinitions(ctx, tx, tempID, targetID); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	scope, err := loadMergeScope(ctx, tx, tempID, targetID)
	if err != nil {
		_ = tx.Rollback()
		return nil, apierror.MapSQLError(err, "")
	}
	renames := scope.planRenames()

	// Renames happen before any re-parent so no intermediate state can
	// violate the label uniqueness on the target side.
	for _, rename := range renames {
		_, err = tx.ExecContext(ctx, `
			UPDATE curvetrace.instances SET version = $2 WHERE instance_id = $1
		`, rename.InstanceID, rename.NewVersion)
		if err != nil {
			_ = tx.Rollback()
			return nil, apierror.MapSQLError(err, "")
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE curvetrace.instances SET definition_id = $2 WHERE definition_id = $1
	`, tempID, targetID)
	if err != nil {
		_ = tx.Rollback()
		return nil, apierror.MapSQLError(err, "")
	}
	instancesMoved, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check instance re-parent result", err)
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE curvetrace.schedules SET definition_id = $2 WHERE definition_id = $1
	`, tempID, targetID)
	if err != nil {
		_ = tx.Rollback()
		return nil, apierror.MapSQLError(err, "")
	}
	schedulesMoved, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check schedule re-parent result", err)
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE curvetrace.definition_inputs SET definition_id = $2 WHERE definition_id = $1
	`, tempID, targetID)
	if err != nil {
		_ = tx.Rollback()
		return nil, apierror.MapSQLError(err, "")
	}
	inputsMoved, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check input re-parent result", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM curvetrace.definitions WHERE definition_id = $1`, tempID); err != nil {
		_ = tx.Rollback()
		return nil, apierror.MapSQLError(err, "")
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.MapSQLError(err, "")
	}

	logrus.WithFields(logrus.Fields{
		"temp_definition_id":   tempID,
		"target_definition_id": targetID,
		"instances_moved":      instancesMoved,
		"schedules_moved":      schedulesMoved,
		"renames":              len(renames),
	}).Info("definitions merged")

	return &model.MergeResult{
		TempDefinitionID:   tempID,
		TargetDefinitionID: targetID,
		InstancesMoved:     int(instancesMoved),
		SchedulesMoved:     int(schedulesMoved),
		InputsMoved:        int(inputsMoved),
		Renames:            renames,
	}, nil
}
