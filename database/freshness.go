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

	"github.com/shopspring/decimal"

	"github.com/fathomenergy/curvetrace/internal/apierror"
	"github.com/fathomenergy/curvetrace/model"
)

// InsertDataRows bulk-inserts validated data rows for an instance inside one
// transaction. Rows open with the window their caller sets later through
// SetGroupFreshness; inserts leave freshness_end untouched (NULL means
// currently fresh).
func (d Datasource) InsertDataRows(ctx context.Context, instanceID string, rows []model.DataRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO curvetrace.data_rows (row_id, instance_id, timestamp, value, curve_type, commodity, scenario, units, freshness_start, freshness_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL, $10)
	`)
	if err != nil {
		_ = tx.Rollback()
		return 0, apierror.MapSQLError(err, "")
	}
	defer stmt.Close()

	now := time.Now()
	for i := range rows {
		row := &rows[i]
		row.RowID = model.GenerateUUIDWithSuffix("row")
		row.InstanceID = instanceID
		if row.FreshnessStart.IsZero() {
			row.FreshnessStart = now
		}
		row.CreatedAt = now
		_, err = stmt.ExecContext(ctx, row.RowID, row.InstanceID, row.Timestamp, row.Value.String(),
			row.CurveType, row.Commodity, row.Scenario, row.Units, row.FreshnessStart, row.CreatedAt)
		if err != nil {
			_ = tx.Rollback()
			return 0, apierror.MapSQLError(err, "")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apierror.MapSQLError(err, "")
	}
	return len(rows), nil
}

// SetGroupFreshness opens a freshness window for one (curveType, commodity)
// group of an instance. Within the same transaction, every open window for
// the same group across the owning definition's instances is closed at
// exactly the new start: no gap, no overlap. Other groups in the same
// instance are untouched.
func (d Datasource) SetGroupFreshness(ctx context.Context, instanceID, curveType, commodity string, start time.Time, end *time.Time) error {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	var definitionID string
	err = tx.QueryRowContext(ctx, `
		SELECT definition_id FROM curvetrace.instances WHERE instance_id = $1 FOR UPDATE
	`, instanceID).Scan(&definitionID)
	if err != nil {
		_ = tx.Rollback()
		return apierror.MapSQLError(err, fmt.Sprintf("Instance with ID '%s' not found", instanceID))
	}

	// Close the old windows first: every open row in the same group across
	// this definition's instances ends exactly where the new window starts.
	_, err = tx.ExecContext(ctx, `
		UPDATE curvetrace.data_rows
		SET freshness_end = $4
		WHERE curve_type = $2 AND commodity = $3 AND freshness_end IS NULL
		AND instance_id IN (SELECT instance_id FROM curvetrace.instances WHERE definition_id = $1)
		AND instance_id != $5
	`, definitionID, curveType, commodity, start, instanceID)
	if err != nil {
		_ = tx.Rollback()
		return apierror.MapSQLError(err, "")
	}

	var endValue interface{}
	if end != nil {
		endValue = *end
	}
	result, err := tx.ExecContext(ctx, `
		UPDATE curvetrace.data_rows
		SET freshness_start = $2, freshness_end = $3
		WHERE instance_id = $1 AND curve_type = $4 AND commodity = $5
	`, instanceID, start, endValue, curveType, commodity)
	if err != nil {
		_ = tx.Rollback()
		return apierror.MapSQLError(err, "")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check freshness update result", err)
	}
	if rowsAffected == 0 {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("no data rows for group (%s, %s) on instance '%s'", curveType, commodity, instanceID), nil)
	}

	if err := tx.Commit(); err != nil {
		return apierror.MapSQLError(err, "")
	}
	return nil
}

// SupersedeGroup closes the open window of one group on one instance.
func (d Datasource) SupersedeGroup(ctx context.Context, instanceID, curveType, commodity string, end time.Time) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE curvetrace.data_rows
		SET freshness_end = $4
		WHERE instance_id = $1 AND curve_type = $2 AND commodity = $3 AND freshness_end IS NULL
	`, instanceID, curveType, commodity, end)
	if err != nil {
		return apierror.MapSQLError(err, "")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check supersede result", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("no open window for group (%s, %s) on instance '%s'", curveType, commodity, instanceID), nil)
	}
	return nil
}

// GetFreshGroups returns, per (curveType, commodity) group under a
// definition, the current window, the instance that owns it and the row
// count it covers. A window is current while its end is unset or still in
// the future. Group windows are authoritative; instance-level freshness
// fields are a derived convenience.
func (d Datasource) GetFreshGroups(definitionID string) ([]model.FreshGroup, error) {
	rows, err := d.Conn.Query(`
		SELECT dr.curve_type, dr.commodity, dr.instance_id, i.version, MIN(dr.freshness_start), dr.freshness_end, COUNT(*)
		FROM curvetrace.data_rows dr
		JOIN curvetrace.instances i ON dr.instance_id = i.instance_id
		WHERE i.definition_id = $1 AND (dr.freshness_end IS NULL OR dr.freshness_end > now())
		GROUP BY dr.curve_type, dr.commodity, dr.instance_id, i.version, dr.freshness_end
		ORDER BY dr.curve_type, dr.commodity
	`, definitionID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve fresh groups", err)
	}
	defer rows.Close()

	groups := []model.FreshGroup{}
	for rows.Next() {
		group := model.FreshGroup{}
		var freshnessEnd sql.NullTime
		err := rows.Scan(&group.CurveType, &group.Commodity, &group.InstanceID, &group.Version, &group.FreshnessStart, &freshnessEnd, &group.RowCount)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan fresh group", err)
		}
		if freshnessEnd.Valid {
			end := freshnessEnd.Time
			group.FreshnessEnd = &end
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// GetDataRows retrieves an instance's data rows ordered by timestamp.
func (d Datasource) GetDataRows(instanceID string, limit, offset int) ([]model.DataRow, error) {
	rows, err := d.Conn.Query(`
		SELECT row_id, instance_id, timestamp, value, curve_type, commodity, scenario, units, freshness_start, freshness_end, created_at
		FROM curvetrace.data_rows
		WHERE instance_id = $1
		ORDER BY timestamp ASC
		LIMIT $2 OFFSET $3
	`, instanceID, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve data rows", err)
	}
	defer rows.Close()

	dataRows := []model.DataRow{}
	for rows.Next() {
		row := model.DataRow{}
		var valueStr string
		var freshnessEnd sql.NullTime
		err := rows.Scan(&row.RowID, &row.InstanceID, &row.Timestamp, &valueStr, &row.CurveType,
			&row.Commodity, &row.Scenario, &row.Units, &row.FreshnessStart, &freshnessEnd, &row.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan data row", err)
		}
		row.Value, err = decimal.NewFromString(valueStr)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to parse data row value", err)
		}
		if freshnessEnd.Valid {
			end := freshnessEnd.Time
			row.FreshnessEnd = &end
		}
		dataRows = append(dataRows, row)
	}
	return dataRows, nil
}
