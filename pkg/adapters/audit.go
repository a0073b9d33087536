package adapters

import (
	"maps"

	"github.com/de-tools/cloud-billing-report/pkg/models/domain"
	"github.com/de-tools/cloud-billing-report/pkg/models/store"
)

// MapStoreAuditedResourceToDomainComplianceRecord lifts a raw audit row into
// the domain. accountNames maps account id to display name; unknown accounts
// keep their id as the name. Status and ownership stay unresolved here — the
// compliance classifier owns that.
func MapStoreAuditedResourceToDomainComplianceRecord(
	resource store.AuditedResource,
	accountNames map[string]string,
) domain.ComplianceRecord {
	name, ok := accountNames[resource.AccountID]
	if !ok {
		name = resource.AccountID
	}

	return domain.ComplianceRecord{
		ResourceID:   resource.ARN,
		ResourceType: resource.ResourceType,
		AccountID:    resource.AccountID,
		AccountName:  name,
		Region:       resource.Region,
		Status:       domain.ComplianceStatus(resource.Compliance),
		Tags:         maps.Clone(resource.Tags),
	}
}
