package compliance

import (
	"github.com/de-tools/cloud-billing-report/pkg/models/domain"
)

// Reconciliation is the audit's view of the estate, shaped for delivery: the
// compliant/non-compliant partition for the bulk report, per-owner buckets for
// personalized mail, and per-managed-account findings.
type Reconciliation struct {
	Compliant    []domain.ComplianceRecord
	NonCompliant []domain.ComplianceRecord

	// OwnerResources buckets compliant resources by resolved owner email.
	// Shared and unowned resources are not personally deliverable and appear
	// only in the partition above.
	OwnerResources map[string][]domain.ComplianceRecord

	// NonCompliantByAccount carries an entry for every managed account, empty
	// list included, so the bulk report renders a zero-findings row instead of
	// omitting the account.
	NonCompliantByAccount map[string][]domain.ComplianceRecord
}

// Reconcile classifies the merged audit batch. Ownership must already be
// resolved on every record (Classifier.ResolveOwnership). managedAccounts maps
// account id to account name; non-compliant resources in unmanaged accounts
// are out of policy scope and omitted from the per-account grouping.
func Reconcile(records []domain.ComplianceRecord, managedAccounts map[string]string) Reconciliation {
	compliant, nonCompliant := Partition(records)
	return Reconciliation{
		Compliant:             compliant,
		NonCompliant:          nonCompliant,
		OwnerResources:        GroupByOwner(compliant),
		NonCompliantByAccount: GroupNonCompliantByAccount(nonCompliant, managedAccounts),
	}
}

// Partition splits records by compliance status. Every record lands in exactly
// one side; nothing is dropped here.
func Partition(records []domain.ComplianceRecord) (compliant, nonCompliant []domain.ComplianceRecord) {
	for _, record := range records {
		if record.Status == domain.NonCompliant {
			nonCompliant = append(nonCompliant, record)
		} else {
			compliant = append(compliant, record)
		}
	}
	return compliant, nonCompliant
}

// GroupByOwner buckets records by resolved email. Records without one (shared
// or unowned) are excluded from personalized delivery.
func GroupByOwner(records []domain.ComplianceRecord) map[string][]domain.ComplianceRecord {
	owners := map[string][]domain.ComplianceRecord{}
	for _, record := range records {
		if record.Email == "" {
			continue
		}
		owners[record.Email] = append(owners[record.Email], record)
	}
	return owners
}

// GroupNonCompliantByAccount groups findings by managed account name,
// pre-seeded so accounts with zero findings still appear.
func GroupNonCompliantByAccount(
	records []domain.ComplianceRecord,
	managedAccounts map[string]string,
) map[string][]domain.ComplianceRecord {
	byAccount := map[string][]domain.ComplianceRecord{}
	for _, name := range managedAccounts {
		byAccount[name] = []domain.ComplianceRecord{}
	}
	for _, record := range records {
		name, managed := managedAccounts[record.AccountID]
		if !managed {
			continue
		}
		byAccount[name] = append(byAccount[name], record)
	}
	return byAccount
}
