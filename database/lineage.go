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
	"time"

	"github.com/fathomenergy/curvetrace/internal/apierror"
	"github.com/fathomenergy/curvetrace/model"
)

// RecordLineage appends the fundamental inputs consumed to build an
// instance. Pure append inside one transaction; validation stops at enum
// membership and weight range.
func (d Datasource) RecordLineage(ctx context.Context, instanceID string, inputs []model.LineageRecord) (int, error) {
	if len(inputs) == 0 {
		return 0, nil
	}
	for i := range inputs {
		if err := inputs[i].Validate(); err != nil {
			return 0, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
		}
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO curvetrace.lineage_records (lineage_id, instance_id, input_type, source, identifier, input_version, input_timestamp, usage_type, weight, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		_ = tx.Rollback()
		return 0, apierror.MapSQLError(err, "")
	}
	defer stmt.Close()

	now := time.Now()
	for i := range inputs {
		input := &inputs[i]
		input.LineageID = model.GenerateUUIDWithSuffix("lin")
		input.InstanceID = instanceID
		input.CreatedAt = now

		var weight interface{}
		if input.Weight != nil {
			weight = *input.Weight
		}
		_, err = stmt.ExecContext(ctx, input.LineageID, input.InstanceID, input.InputType, input.Source,
			input.Identifier, input.InputVersion, input.InputTimestamp, input.UsageType, weight, input.CreatedAt)
		if err != nil {
			_ = tx.Rollback()
			return 0, apierror.MapSQLError(err, "")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apierror.MapSQLError(err, "")
	}
	return len(inputs), nil
}

// GetLineage retrieves an instance's lineage records, oldest first.
func (d Datasource) GetLineage(instanceID string) ([]model.LineageRecord, error) {
	rows, err := d.Conn.Query(`
		SELECT lineage_id, instance_id, input_type, source, identifier, input_version, input_timestamp, usage_type, weight, created_at
		FROM curvetrace.lineage_records
		WHERE instance_id = $1
		ORDER BY created_at ASC
	`, instanceID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve lineage", err)
	}
	defer rows.Close()

	records := []model.LineageRecord{}
	for rows.Next() {
		record := model.LineageRecord{}
		var weight sql.NullFloat64
		err := rows.Scan(&record.LineageID, &record.InstanceID, &record.InputType, &record.Source,
			&record.Identifier, &record.InputVersion, &record.InputTimestamp, &record.UsageType, &weight, &record.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan lineage record", err)
		}
		if weight.Valid {
			w := weight.Float64
			record.Weight = &w
		}
		records = append(records, record)
	}
	return records, nil
}

// SetDefinitionInputs replaces a definition's default inputs in one
// transaction. New instances inherit these unless explicit lineage is
// recorded.
func (d Datasource) SetDefinitionInputs(ctx context.Context, definitionID string, inputs []model.DefinitionInput) error {
	for i := range inputs {
		if err := inputs[i].Validate(); err != nil {
			return apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
		}
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM curvetrace.definition_inputs WHERE definition_id = $1`, definitionID); err != nil {
		_ = tx.Rollback()
		return apierror.MapSQLError(err, "")
	}

	now := time.Now()
	for i := range inputs {
		input := &inputs[i]
		input.InputID = model.GenerateUUIDWithSuffix("inp")
		input.DefinitionID = definitionID
		input.CreatedAt = now
		_, err = tx.ExecContext(ctx, `
			INSERT INTO curvetrace.definition_inputs (input_id, definition_id, input_type, source, usage_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, input.InputID, input.DefinitionID, input.InputType, input.Source, input.UsageType, input.CreatedAt)
		if err != nil {
			_ = tx.Rollback()
			return apierror.MapSQLError(err, "")
		}
	}

	if err := tx.Commit(); err != nil {
		return apierror.MapSQLError(err, "")
	}
	return nil
}

// GetDefinitionInputs retrieves a definition's default inputs.
func (d Datasource) GetDefinitionInputs(definitionID string) ([]model.DefinitionInput, error) {
	rows, err := d.Conn.Query(`
		SELECT input_id, definition_id, input_type, source, usage_type, created_at
		FROM curvetrace.definition_inputs
		WHERE definition_id = $1
		ORDER BY created_at ASC
	`, definitionID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve definition inputs", err)
	}
	defer rows.Close()

	inputs := []model.DefinitionInput{}
	for rows.Next() {
		input := model.DefinitionInput{}
		err := rows.Scan(&input.InputID, &input.DefinitionID, &input.InputType, &input.Source, &input.UsageType, &input.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan definition input", err)
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}
