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
	"database/sql"

	"github.com/fathomenergy/curvetrace/internal/apierror"
	"github.com/fathomenergy/curvetrace/model"
)

const historyFields = `id, instance_id, COALESCE(predecessor_id, ''), change_type, reason, actor, created_at`

func scanHistory(row interface{ Scan(...interface{}) error }) (*model.VersionHistoryEntry, error) {
	entry := &model.VersionHistoryEntry{}
	err := row.Scan(&entry.ID, &entry.InstanceID, &entry.PredecessorID, &entry.ChangeType, &entry.Reason, &entry.Actor, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetVersionHistory retrieves an instance's history entries, oldest first.
// Entries are written by CreateInstance inside the supersession transaction;
// the chain is append-only.
func (d Datasource) GetVersionHistory(instanceID string) ([]model.VersionHistoryEntry, error) {
	rows, err := d.Conn.Query(`
		SELECT `+historyFields+`
		FROM curvetrace.version_history
		WHERE instance_id = $1
		ORDER BY created_at ASC
	`, instanceID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve version history", err)
	}
	defer rows.Close()

	return collectHistory(rows)
}

// GetDefinitionHistory retrieves history entries across every instance of a
// definition, oldest first, giving the full predecessor chain of the curve.
func (d Datasource) GetDefinitionHistory(definitionID string) ([]model.VersionHistoryEntry, error) {
	rows, err := d.Conn.Query(`
		SELECT h.id, h.instance_id, COALESCE(h.predecessor_id, ''), h.change_type, h.reason, h.actor, h.created_at
		FROM curvetrace.version_history h
		JOIN curvetrace.instances i ON h.instance_id = i.instance_id
		WHERE i.definition_id = $1
		ORDER BY h.created_at ASC
	`, definitionID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve definition history", err)
	}
	defer rows.Close()

	return collectHistory(rows)
}

func collectHistory(rows *sql.Rows) ([]model.VersionHistoryEntry, error) {
	entries := []model.VersionHistoryEntry{}
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan history entry", err)
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}
