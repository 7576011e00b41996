package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Definition is the stable identity of a forecast curve, independent of any
// particular forecast run. Identity attributes never change after creation;
// duplicate identities are folded together by a merge, not rejected on insert.
type Definition struct {
	ID            int64                  `json:"-"`
	DefinitionID  string                 `json:"definition_id"`
	Market        string                 `json:"market"`
	Location      string                 `json:"location"`
	Product       string                 `json:"product"`
	CurveType     string                 `json:"curve_type"`
	DurationClass string                 `json:"duration_class"`
	Scenario      string                 `json:"scenario"`
	Units         string                 `json:"units"`
	Timezone      string                 `json:"timezone"`
	Active        bool                   `json:"active"`
	CreatedAt     time.Time              `json:"created_at"`
	MetaData      map[string]interface{} `json:"meta_data,omitempty"`
}

// IdentityKey derives a deterministic key from the identity tuple. Two
// definitions with the same key are duplicates of one another and are
// candidates for a merge.
func (d *Definition) IdentityKey() string {
	parts := []string{d.Market, d.Location, d.Product, d.CurveType, d.DurationClass, d.Scenario}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}
