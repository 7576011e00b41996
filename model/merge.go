package model

// VersionRename is one planned rename of a colliding version label, applied
// before re-parenting so the unique constraint on
// (definition, period, version) cannot fire mid-merge.
type VersionRename struct {
	InstanceID string `json:"instance_id"`
	OldVersion string `json:"old_version"`
	NewVersion string `json:"new_version"`
}

// MergePlan is the dry-run view of a merge: what would move and what would
// be renamed, computed without mutating anything.
type MergePlan struct {
	TempDefinitionID   string          `json:"temp_definition_id"`
	TargetDefinitionID string          `json:"target_definition_id"`
	Instances          int             `json:"instances"`
	Schedules          int             `json:"schedules"`
	DefaultInputs      int             `json:"default_inputs"`
	Renames            []VersionRename `json:"renames"`
}

// MergeResult reports a committed merge.
type MergeResult struct {
	TempDefinitionID   string          `json:"temp_definition_id"`
	TargetDefinitionID string          `json:"target_definition_id"`
	InstancesMoved     int             `json:"instances_moved"`
	SchedulesMoved     int             `json:"schedules_moved"`
	InputsMoved        int             `json:"inputs_moved"`
	Renames            []VersionRename `json:"renames"`
}
