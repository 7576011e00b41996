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
	"time"

	"github.com/fathomenergy/curvetrace/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	definition // Definition identity store
	instanceL  // Instance ledger with supersession
	freshness  // Group-level freshness tracking
	schedule   // Schedule cadence store
	lineage    // Lineage recorder
	history    // Version-history chain
	merge      // Duplicate-definition merge
}

// definition defines methods for the Definition identity store.
type definition interface {
	CreateDefinition(definition model.Definition) (model.Definition, error)             // Creates a new definition
	GetDefinitionByID(id string) (*model.Definition, error)                             // Retrieves a definition by ID
	GetAllDefinitions(limit, offset int) ([]model.Definition, error)                    // Retrieves all definitions
	FindDefinitionsByIdentity(definition *model.Definition) ([]model.Definition, error) // Finds definitions sharing an identity tuple
	DeactivateDefinition(id string) error                                               // Soft-deactivates a definition
	DeleteDefinition(ctx context.Context, id string) error                              // Hard-deletes a definition and all dependents
}

// instanceL defines methods for the instance ledger.
type instanceL interface {
	CreateInstance(ctx context.Context, req *CreateInstanceRequest) (*model.Instance, error)   // Creates an instance, superseding any active predecessor
	GetInstanceByID(id string) (*model.Instance, error)                                        // Retrieves an instance by ID
	GetInstancesByDefinition(definitionID string, limit, offset int) ([]model.Instance, error) // Retrieves a definition's instances
	GetLastInstance(definitionID string) (*model.Instance, error)                              // Retrieves the most recent instance, if any
	UpdateInstanceStatus(ctx context.Context, id string, status string) error                  // Moves an instance through its lifecycle
	DeleteInstance(ctx context.Context, id string) error                                       // Deletes an instance and its data, lineage and history
}

// freshness defines methods for group-level freshness windows.
type freshness interface {
	InsertDataRows(ctx context.Context, instanceID string, rows []model.DataRow) (int, error)                              // Bulk-inserts validated data rows
	SetGroupFreshness(ctx context.Context, instanceID, curveType, commodity string, start time.Time, end *time.Time) error // Opens a group window, closing predecessors at exactly start
	SupersedeGroup(ctx context.Context, instanceID, curveType, commodity string, end time.Time) error                      // Closes a group's open window
	GetFreshGroups(definitionID string) ([]model.FreshGroup, error)                                                        // Returns the open window per (curveType, commodity)
	GetDataRows(instanceID string, limit, offset int) ([]model.DataRow, error)                                             // Retrieves an instance's rows
}

// schedule defines methods for the cadence store.
type schedule interface {
	CreateSchedule(schedule model.Schedule) (model.Schedule, error)              // Creates a schedule
	GetScheduleByID(id string) (*model.Schedule, error)                          // Retrieves a schedule by ID
	GetSchedulesByDefinition(definitionID string) ([]model.Schedule, error)      // Retrieves a definition's schedules
	GetAllSchedules(limit, offset int) ([]model.Schedule, error)                 // Retrieves all schedules
	UpdateSchedule(schedule *model.Schedule) error                               // Updates a schedule's cadence fields
	DeleteSchedule(ctx context.Context, id string) error                         // Deletes a schedule and its run history
	RecordScheduleRun(run *model.ScheduleRun) (*model.ScheduleRun, error)        // Appends a run to a schedule's history
	UpdateScheduleRunStatus(id string, status string, actualAt *time.Time) error // Resolves a pending run
	GetScheduleRuns(scheduleID string, limit int) ([]model.ScheduleRun, error)   // Retrieves recent runs
}

// lineage defines methods for the lineage recorder.
type lineage interface {
	RecordLineage(ctx context.Context, instanceID string, inputs []model.LineageRecord) (int, error)    // Appends lineage inputs for an instance
	GetLineage(instanceID string) ([]model.LineageRecord, error)                                        // Retrieves an instance's lineage
	SetDefinitionInputs(ctx context.Context, definitionID string, inputs []model.DefinitionInput) error // Replaces a definition's default inputs
	GetDefinitionInputs(definitionID string) ([]model.DefinitionInput, error)                           // Retrieves a definition's default inputs
}

// history defines methods for the version chain.
type history interface {
	GetVersionHistory(instanceID string) ([]model.VersionHistoryEntry, error)      // Retrieves an instance's history entries
	GetDefinitionHistory(definitionID string) ([]model.VersionHistoryEntry, error) // Retrieves history across a definition's instances
}

// merge defines methods for folding duplicate definitions together.
type merge interface {
	PreviewMerge(ctx context.Context, tempID, targetID string) (*model.MergePlan, error)       // Computes the merge plan without mutating
	MergeDefinitions(ctx context.Context, tempID, targetID string) (*model.MergeResult, error) // Folds temp's instances, schedules and inputs into target
}
