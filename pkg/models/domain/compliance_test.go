package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplianceRecord_DeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		record   ComplianceRecord
		expected ComplianceStatus
	}{
		{
			name:     "marker tag present",
			record:   ComplianceRecord{Tags: map[string]string{TagNonCompliantMarker: "true"}},
			expected: NonCompliant,
		},
		{
			name:     "no marker tag",
			record:   ComplianceRecord{Tags: map[string]string{TagOwner: "alice@example.com"}},
			expected: Compliant,
		},
		{
			name:     "explicit status is kept",
			record:   ComplianceRecord{Status: NonCompliant, Tags: map[string]string{}},
			expected: NonCompliant,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.record.DeriveStatus()
			assert.Equal(t, tt.expected, tt.record.Status)
		})
	}
}

func TestComplianceRecord_OwnerTagPrecedence(t *testing.T) {
	record := ComplianceRecord{Tags: map[string]string{
		TagOwner:      "alice@example.com",
		TagOwnerLower: "bob@example.com",
	}}
	assert.Equal(t, "alice@example.com", record.OwnerTagValue())

	record = ComplianceRecord{Tags: map[string]string{
		TagOwner:      "",
		TagOwnerLower: "bob@example.com",
	}}
	assert.Equal(t, "bob@example.com", record.OwnerTagValue())

	record = ComplianceRecord{Tags: map[string]string{}}
	assert.Equal(t, "", record.OwnerTagValue())
}
