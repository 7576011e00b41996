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
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/fathomenergy/curvetrace/internal/apierror"
	"github.com/fathomenergy/curvetrace/model"
)

// childTable is one edge of the declared ownership graph: a dependent table
// and the predicate selecting the rows owned by a parent id. Cascading
// deletes walk these lists leaf-first inside one transaction, so adding a
// new child table is a one-line addition here.
type childTable struct {
	table string
	where string
}

// definitionChildren lists everything a Definition owns, leaves first:
// Definition -> Instances -> {DataRows, Lineage, History} and
// Definition -> Schedules -> Runs.
var definitionChildren = []childTable{
	{"curvetrace.data_rows", "instance_id IN (SELECT instance_id FROM curvetrace.instances WHERE definition_id = $1)"},
	{"curvetrace.lineage_records", "instance_id IN (SELECT instance_id FROM curvetrace.instances WHERE definition_id = $1)"},
	{"curvetrace.version_history", "instance_id IN (SELECT instance_id FROM curvetrace.instances WHERE definition_id = $1)"},
	{"curvetrace.instances", "definition_id = $1"},
	{"curvetrace.schedule_runs", "schedule_id IN (SELECT schedule_id FROM curvetrace.schedules WHERE definition_id = $1)"},
	{"curvetrace.schedules", "definition_id = $1"},
	{"curvetrace.definition_inputs", "definition_id = $1"},
}

// CreateDefinition inserts a new curve definition. Duplicate identity tuples
// are allowed at insert time; they are resolved later by a merge.
func (d Datasource) CreateDefinition(definition model.Definition) (model.Definition, error) {
	metaDataJSON, err := json.Marshal(definition.MetaData)
	if err != nil {
		return model.Definition{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	definition.DefinitionID = model.GenerateUUIDWithSuffix("def")
	definition.Active = true
	definition.CreatedAt = time.Now()

	_, err = d.Conn.Exec(`
		INSERT INTO curvetrace.definitions (definition_id, market, location, product, curve_type, duration_class, scenario, units, timezone, active, created_at, meta_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, definition.DefinitionID, definition.Market, definition.Location, definition.Product, definition.CurveType, definition.DurationClass, definition.Scenario, definition.Units, definition.Timezone, definition.Active, definition.CreatedAt, metaDataJSON)

	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return model.Definition{}, apierror.NewAPIError(apierror.ErrConflict, "Definition with this ID already exists", err)
			default:
				return model.Definition{}, apierror.NewAPIError(apierror.ErrInternalServer, "Database error occurred", err)
			}
		}
		return model.Definition{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create definition", err)
	}

	return definition, nil
}

const definitionFields = `definition_id, market, location, product, curve_type, duration_class, scenario, units, timezone, active, created_at, meta_data`

func scanDefinition(row interface{ Scan(...interface{}) error }) (*model.Definition, error) {
	definition := &model.Definition{}
	var metaDataJSON []byte
	err := row.Scan(&definition.DefinitionID, &definition.Market, &definition.Location, &definition.Product,
		&definition.CurveType, &definition.DurationClass, &definition.Scenario, &definition.Units,
		&definition.Timezone, &definition.Active, &definition.CreatedAt, &metaDataJSON)
	if err != nil {
		return nil, err
	}
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &definition.MetaData); err != nil {
			return nil, err
		}
	}
	return definition, nil
}

// GetDefinitionByID retrieves a definition by its ID.
func (d Datasource) GetDefinitionByID(id string) (*model.Definition, error) {
	row := d.Conn.QueryRow(`
		SELECT `+definitionFields+`
		FROM curvetrace.definitions
		WHERE definition_id = $1
	`, id)

	definition, err := scanDefinition(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Definition with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve definition", err)
	}
	return definition, nil
}

// GetAllDefinitions retrieves definitions ordered by creation time.
func (d Datasource) GetAllDefinitions(limit, offset int) ([]model.Definition, error) {
	rows, err := d.Conn.Query(`
		SELECT `+definitionFields+`
		FROM curvetrace.definitions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve definitions", err)
	}
	defer rows.Close()

	definitions := []model.Definition{}
	for rows.Next() {
		definition, err := scanDefinition(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan definition", err)
		}
		definitions = append(definitions, *definition)
	}
	return definitions, nil
}

// FindDefinitionsByIdentity returns every definition sharing the given
// identity tuple, oldest first. More than one result means duplicates exist
// and a merge is due.
func (d Datasource) FindDefinitionsByIdentity(definition *model.Definition) ([]model.Definition, error) {
	rows, err := d.Conn.Query(`
		SELECT `+definitionFields+`
		FROM curvetrace.definitions
		WHERE market = $1 AND location = $2 AND product = $3 AND curve_type = $4 AND duration_class = $5 AND scenario = $6
		ORDER BY created_at ASC
	`, definition.Market, definition.Location, definition.Product, definition.CurveType, definition.DurationClass, definition.Scenario)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to search definitions", err)
	}
	defer rows.Close()

	definitions := []model.Definition{}
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan definition", err)
		}
		definitions = append(definitions, *def)
	}
	return definitions, nil
}

// DeactivateDefinition soft-deactivates a definition. Instances keep
// referencing it; only explicit admin deletion removes rows.
func (d Datasource) DeactivateDefinition(id string) error {
	result, err := d.Conn.Exec(`
		UPDATE curvetrace.definitions
		SET active = false
		WHERE definition_id = $1
	`, id)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to deactivate definition", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check deactivation result", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Definition with ID '%s' not found", id), nil)
	}
	return nil
}

// DeleteDefinition hard-deletes a definition and everything it owns in one
// transaction, walking the ownership graph leaf-first. Success is reported
// only after the whole cascade commits.
func (d Datasource) DeleteDefinition(ctx context.Context, id string) error {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	for _, child := range definitionChildren {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s", child.table, child.where), id); err != nil {
			_ = tx.Rollback()
			return apierror.MapSQLError(err, "")
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM curvetrace.definitions WHERE definition_id = $1`, id)
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
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Definition with ID '%s' not found", id), nil)
	}

	if err := tx.Commit(); err != nil {
		return apierror.MapSQLError(err, "")
	}

	logrus.WithFields(logrus.Fields{"definition_id": id}).Info("definition deleted with dependents")
	return nil
}
