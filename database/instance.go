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

	"github.com/sirupsen/logrus"

	"github.com/fathomenergy/curvetrace/internal/apierror"
	"github.com/fathomenergy/curvetrace/model"
)

// instanceChildren lists everything an Instance owns, deleted leaf-first
// when the instance goes.
var instanceChildren = []childTable{
	{"curvetrace.data_rows", "instance_id = $1"},
	{"curvetrace.lineage_records", "instance_id = $1"},
	{"curvetrace.version_history", "instance_id = $1"},
}

// CreateInstanceRequest carries everything needed to create an instance and
// record its provenance in one transaction.
type CreateInstanceRequest struct {
	DefinitionID   string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	ForecastRunAt  time.Time
	Status         string // ACTIVE or DRAFT per caller intent
	Version        string // optional; derived from the predecessor when empty
	IdempotencyKey string // optional; retries return the committed instance
	ChangeType     string // optional; INITIAL/UPDATE derived when empty
	Reason         string
	Actor          string
	MetaData       map[string]interface{}
}

const instanceFields = `instance_id, definition_id, version, period_start, period_end, forecast_run_at, status, freshness_start, freshness_end, COALESCE(idempotency_key, ''), created_at, meta_data`

func scanInstance(row interface{ Scan(...interface{}) error }) (*model.Instance, error) {
	instance := &model.Instance{}
	var metaDataJSON []byte
	var freshnessEnd sql.NullTime
	err := row.Scan(&instance.InstanceID, &instance.DefinitionID, &instance.Version,
		&instance.PeriodStart, &instance.PeriodEnd, &instance.ForecastRunAt, &instance.Status,
		&instance.FreshnessStart, &freshnessEnd, &instance.IdempotencyKey, &instance.CreatedAt, &metaDataJSON)
	if err != nil {
		return nil, err
	}
	if freshnessEnd.Valid {
		end := freshnessEnd.Time
		instance.FreshnessEnd = &end
	}
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &instance.MetaData); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// CreateInstance creates a forecast instance for a definition and delivery
// period, superseding the current ACTIVE instance in the same transaction:
// the predecessor's freshness window closes at exactly the moment the new
// instance's opens, and a version-history entry links the two. The
// predecessor lookup locks with FOR UPDATE so two concurrent writers for the
// same (definition, period) cannot both observe "no active instance".
func (d Datasource) CreateInstance(ctx context.Context, req *CreateInstanceRequest) (*model.Instance, error) {
	instance := &model.Instance{
		DefinitionID:  req.DefinitionID,
		PeriodStart:   req.PeriodStart,
		PeriodEnd:     req.PeriodEnd,
		ForecastRunAt: req.ForecastRunAt,
		Status:        req.Status,
		MetaData:      req.MetaData,
	}
	if err := instance.ValidatePeriod(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}
	if instance.Status == "" {
		instance.Status = model.StatusActive
	}
	if instance.Status != model.StatusActive && instance.Status != model.StatusDraft {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "new instances must be ACTIVE or DRAFT", nil)
	}
	if req.ChangeType != "" && !model.IsValidChangeType(req.ChangeType) {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("unknown change type: %s", req.ChangeType), nil)
	}

	metaDataJSON, err := json.Marshal(instance.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	// Idempotent retry: a previous attempt with the same key may have
	// committed before the caller saw an ambiguous failure.
	if req.IdempotencyKey != "" {
		row := tx.QueryRowContext(ctx, `
			SELECT `+instanceFields+`
			FROM curvetrace.instances
			WHERE idempotency_key = $1
		`, req.IdempotencyKey)
		existing, err := scanInstance(row)
		if err == nil {
			_ = tx.Rollback()
			return existing, nil
		}
		if err != sql.ErrNoRows {
			_ = tx.Rollback()
			return nil, apierror.MapSQLError(err, "")
		}
	}

	// Lock the current active instance for this (definition, period start)
	// so concurrent creates serialize on the supersede-then-insert step.
	row := tx.QueryRowContext(ctx, `
		SELECT `+instanceFields+`
		FROM curvetrace.instances
		WHERE definition_id = $1 AND period_start = $2 AND status = $3 AND freshness_end IS NULL
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`, req.DefinitionID, req.PeriodStart, model.StatusActive)

	predecessor, err := scanInstance(row)
	if err != nil && err != sql.ErrNoRows {
		_ = tx.Rollback()
		return nil, apierror.MapSQLError(err, "")
	}

	now := time.Now()
	previousVersion := ""
	if predecessor != nil {
		previousVersion = predecessor.Version
	}

	if req.Version != "" {
		// Caller-supplied labels must not silently collide with an existing
		// label; that is a CONFLICT, distinct from supersession.
		var exists bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM curvetrace.instances WHERE definition_id = $1 AND period_start = $2 AND version = $3)
		`, req.DefinitionID, req.PeriodStart, req.Version).Scan(&exists)
		if err != nil {
			_ = tx.Rollback()
			return nil, apierror.MapSQLError(err, "")
		}
		if exists {
			_ = tx.Rollback()
			return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("version label '%s' already exists for this delivery period", req.Version), nil)
		}
		instance.Version = req.Version
	} else {
		instance.Version = model.NextVersion(previousVersion)
	}

	if predecessor != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE curvetrace.instances
			SET status = $2, freshness_end = $3
			WHERE instance_id = $1
		`, predecessor.InstanceID, model.StatusSuperseded, now)
		if err != nil {
			_ = tx.Rollback()
			return nil, apierror.MapSQLError(err, "")
		}
	}

	instance.InstanceID = model.GenerateUUIDWithSuffix("ins")
	instance.FreshnessStart = now
	instance.CreatedAt = now
	instance.IdempotencyKey = req.IdempotencyKey
	if instance.ForecastRunAt.IsZero() {
		instance.ForecastRunAt = now
	}

	var idempotencyKey interface{} = instance.IdempotencyKey
	if instance.IdempotencyKey == "" {
		idempotencyKey = nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO curvetrace.instances (instance_id, definition_id, version, period_start, period_end, forecast_run_at, status, freshness_start, freshness_end, idempotency_key, created_at, meta_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, $9, $10, $11)
	`, instance.InstanceID, instance.DefinitionID, instance.Version, instance.PeriodStart, instance.PeriodEnd,
		instance.ForecastRunAt, instance.Status, instance.FreshnessStart, idempotencyKey, instance.CreatedAt, metaDataJSON)
	if err != nil {
		_ = tx.Rollback()
		return nil, apierror.MapSQLError(err, "")
	}

	changeType := req.ChangeType
	if changeType == "" {
		changeType = model.ChangeInitial
		if predecessor != nil {
			changeType = model.ChangeUpdate
		}
	}
	var predecessorID interface{}
	if predecessor != nil {
		predecessorID = predecessor.InstanceID
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO curvetrace.version_history (instance_id, predecessor_id, change_type, reason, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, instance.InstanceID, predecessorID, changeType, req.Reason, req.Actor, now)
	if err != nil {
		_ = tx.Rollback()
		return nil, apierror.MapSQLError(err, "")
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.MapSQLError(err, "")
	}

	logrus.WithFields(logrus.Fields{
		"instance_id":   instance.InstanceID,
		"definition_id": instance.DefinitionID,
		"version":       instance.Version,
		"superseded":    predecessor != nil,
		"actor":         req.Actor,
	}).Info("instance created")

	return instance, nil
}

// GetInstanceByID retrieves an instance by its ID.
func (d Datasource) GetInstanceByID(id string) (*model.Instance, error) {
	row := d.Conn.QueryRow(`
		SELECT `+instanceFields+`
		FROM curvetrace.instances
		WHERE instance_id = $1
	`, id)

	instance, err := scanInstance(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Instance with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve instance", err)
	}
	return instance, nil
}

// GetInstancesByDefinition retrieves a definition's instances, newest first.
func (d Datasource) GetInstancesByDefinition(definitionID string, limit, offset int) ([]model.Instance, error) {
	rows, err := d.Conn.Query(`
		SELECT `+instanceFields+`
		FROM curvetrace.instances
		WHERE definition_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, definitionID, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve instances", err)
	}
	defer rows.Close()

	instances := []model.Instance{}
	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan instance", err)
		}
		instances = append(instances, *instance)
	}
	return instances, nil
}

// GetLastInstance returns the most recent instance under a definition, or
// nil when none exists. The schedule engine feeds this into its pure
// next-due and display-status computations.
func (d Datasource) GetLastInstance(definitionID string) (*model.Instance, error) {
	row := d.Conn.QueryRow(`
		SELECT `+instanceFields+`
		FROM curvetrace.instances
		WHERE definition_id = $1
		ORDER BY forecast_run_at DESC, created_at DESC
		LIMIT 1
	`, definitionID)

	instance, err := scanInstance(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve last instance", err)
	}
	return instance, nil
}

// UpdateInstanceStatus moves an instance through its lifecycle, rejecting
// transitions the lifecycle table does not allow.
func (d Datasource) UpdateInstanceStatus(ctx context.Context, id string, status string) error {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	row := tx.QueryRowContext(ctx, `
		SELECT `+instanceFields+`
		FROM curvetrace.instances
		WHERE instance_id = $1
		FOR UPDATE
	`, id)
	instance, err := scanInstance(row)
	if err != nil {
		_ = tx.Rollback()
		return apierror.MapSQLError(err, fmt.Sprintf("Instance with ID '%s' not found", id))
	}

	if !instance.CanTransitionTo(status) {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("cannot transition instance from %s to %s", instance.Status, status), nil)
	}

	// Leaving ACTIVE closes the instance-level freshness window.
	if instance.Status == model.StatusActive && instance.FreshnessEnd == nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE curvetrace.instances
			SET status = $2, freshness_end = $3
			WHERE instance_id = $1
		`, id, status, time.Now())
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE curvetrace.instances
			SET status = $2
			WHERE instance_id = $1
		`, id, status)
	}
	if err != nil {
		_ = tx.Rollback()
		return apierror.MapSQLError(err, "")
	}

	if err := tx.Commit(); err != nil {
		return apierror.MapSQLError(err, "")
	}
	return nil
}

// DeleteInstance removes an instance and its data rows, lineage and history
// in one transaction, leaf-first per the ownership graph.
func (d Datasource) DeleteInstance(ctx context.Context, id string) error {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	for _, child := range instanceChildren {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s", child.table, child.where), id); err != nil {
			_ = tx.Rollback()
			return apierror.MapSQLError(err, "")
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM curvetrace.instances WHERE instance_id = $1`, id)
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
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Instance with ID '%s' not found", id), nil)
	}

	if err := tx.Commit(); err != nil {
		return apierror.MapSQLError(err, "")
	}
	return nil
}
