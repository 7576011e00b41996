package model

import (
	"regexp"
	"strconv"
	"time"
)

// Version-history change types.
const (
	ChangeInitial    = "INITIAL"
	ChangeUpdate     = "UPDATE"
	ChangeCorrection = "CORRECTION"
	ChangeRevision   = "REVISION"
	ChangeFinal      = "FINAL"
	ChangeRollback   = "ROLLBACK"
)

var changeTypes = map[string]bool{
	ChangeInitial:    true,
	ChangeUpdate:     true,
	ChangeCorrection: true,
	ChangeRevision:   true,
	ChangeFinal:      true,
	ChangeRollback:   true,
}

// IsValidChangeType reports whether the given change type is one of the
// closed set of version-history change types.
func IsValidChangeType(changeType string) bool {
	return changeTypes[changeType]
}

var versionPattern = regexp.MustCompile(`^v(\d+)$`)

// NextVersion derives the successor of a version label. Labels follow the
// v<integer> pattern; anything else (empty string, date-based labels like
// "2024-Q4") fails closed to "v1" rather than guessing. Pure function;
// persisting the result and its history entry is the caller's job.
func NextVersion(previous string) string {
	m := versionPattern.FindStringSubmatch(previous)
	if m == nil {
		return "v1"
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return "v1"
	}
	return "v" + strconv.Itoa(n+1)
}

// VersionHistoryEntry links an instance to its immediate predecessor.
// PredecessorID is empty for the first version. Append-only.
type VersionHistoryEntry struct {
	ID            int64     `json:"id"`
	InstanceID    string    `json:"instance_id"`
	PredecessorID string    `json:"predecessor_id,omitempty"`
	ChangeType    string    `json:"change_type"`
	Reason        string    `json:"reason,omitempty"`
	Actor         string    `json:"actor"`
	CreatedAt     time.Time `json:"created_at"`
}
