package compliance

import (
	"testing"

	"github.com/de-tools/cloud-billing-report/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	managed := map[string]string{
		"111111111111": "research",
		"222222222222": "teaching",
	}
	records := []domain.ComplianceRecord{
		{ResourceID: "i-1", AccountID: "111111111111", Status: domain.Compliant, Email: "alice@ucsc.edu"},
		{ResourceID: "i-2", AccountID: "111111111111", Status: domain.Compliant, Email: "alice@ucsc.edu"},
		{ResourceID: "i-3", AccountID: "111111111111", Status: domain.Compliant, Shared: true},
		{ResourceID: "i-4", AccountID: "111111111111", Status: domain.NonCompliant},
		{ResourceID: "i-5", AccountID: "333333333333", Status: domain.NonCompliant},
	}

	result := Reconcile(records, managed)

	assert.Len(t, result.Compliant, 3)
	assert.Len(t, result.NonCompliant, 2)

	// Personalized buckets only hold records with a resolved email.
	require.Contains(t, result.OwnerResources, "alice@ucsc.edu")
	assert.Len(t, result.OwnerResources["alice@ucsc.edu"], 2)
	assert.Len(t, result.OwnerResources, 1)

	// Every managed account appears even with zero findings; unmanaged
	// accounts never do.
	require.Contains(t, result.NonCompliantByAccount, "research")
	require.Contains(t, result.NonCompliantByAccount, "teaching")
	assert.Len(t, result.NonCompliantByAccount["research"], 1)
	assert.Empty(t, result.NonCompliantByAccount["teaching"])
	assert.Len(t, result.NonCompliantByAccount, 2)
}

func TestPartition_NothingDropped(t *testing.T) {
	records := []domain.ComplianceRecord{
		{ResourceID: "a", Status: domain.Compliant},
		{ResourceID: "b", Status: domain.NonCompliant},
		{ResourceID: "c", Status: domain.Compliant},
	}

	compliant, nonCompliant := Partition(records)

	assert.Len(t, compliant, 2)
	assert.Len(t, nonCompliant, 1)
	assert.Equal(t, "b", nonCompliant[0].ResourceID)
}
