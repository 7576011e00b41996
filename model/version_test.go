package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextVersion(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		want     string
	}{
		{"increments simple label", "v3", "v4"},
		{"starts at v1 when empty", "", "v1"},
		{"fails closed on date label", "2024-Q4", "v1"},
		{"fails closed on bare integer", "3", "v1"},
		{"fails closed on prefix with suffix", "v3-m1", "v1"},
		{"fails closed on uppercase", "V3", "v1"},
		{"handles large numbers", "v999", "v1000"},
		{"first increment", "v1", "v2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextVersion(tt.previous))
		})
	}
}

func TestIsValidChangeType(t *testing.T) {
	for _, ct := range []string{ChangeInitial, ChangeUpdate, ChangeCorrection, ChangeRevision, ChangeFinal, ChangeRollback} {
		assert.True(t, IsValidChangeType(ct))
	}
	assert.False(t, IsValidChangeType("MUTATION"))
	assert.False(t, IsValidChangeType(""))
}
