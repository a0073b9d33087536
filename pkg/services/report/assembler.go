package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/de-tools/cloud-billing-report/pkg/models/domain"
	"github.com/de-tools/cloud-billing-report/pkg/services/billing"
)

// BulkSummaries is every aggregation pass the bulk report renders.
type BulkSummaries struct {
	// Month/day totals per managed and unmanaged account.
	ManagedAccounts   billing.Summary
	UnmanagedAccounts billing.Summary
	// All accounts broken down by service, with grand totals.
	AccountService billing.Summary
	// Service totals across managed accounts, sub-dollar entries dropped.
	Services billing.Summary
	// Per-owner service spend, owners at a dollar or less dropped.
	OwnerService billing.Summary
	// Per-resource usage-type spend for resources above $20/month.
	ResourceUsage billing.Summary
	// The three most expensive services by usage type.
	ServiceUsage billing.Summary
}

// BuildBulkSummaries runs the aggregation passes behind the bulk email.
func BuildBulkSummaries(all, managed, unmanaged []*domain.Resource) (*BulkSummaries, error) {
	managedAccounts, err := billing.Rollup([]string{"account"}, managed, billing.RollupOptions{})
	if err != nil {
		return nil, err
	}
	unmanagedAccounts, err := billing.Rollup([]string{"account"}, unmanaged, billing.RollupOptions{})
	if err != nil {
		return nil, err
	}
	accountService, err := billing.Rollup([]string{"account", "service"}, all, billing.RollupOptions{AddTotal: true})
	if err != nil {
		return nil, err
	}
	services, err := billing.Rollup([]string{"service"}, managed, billing.RollupOptions{Threshold: 1})
	if err != nil {
		return nil, err
	}

	ownerService, err := billing.Rollup(
		[]string{"owner", "service"}, managed,
		billing.RollupOptions{AddTotal: true, Threshold: 1},
	)
	if err != nil {
		return nil, err
	}
	ownerService = filterByTotal(ownerService, 1)

	resourceUsage, err := billing.Rollup(
		[]string{"resource", "usage"}, managed,
		billing.RollupOptions{AddTotal: true, Threshold: 1},
	)
	if err != nil {
		return nil, err
	}
	resourceUsage = filterByTotal(resourceUsage, 20)

	serviceUsage, err := billing.Rollup(
		[]string{"service", "usage"}, managed,
		billing.RollupOptions{AddTotal: true, Threshold: 1},
	)
	if err != nil {
		return nil, err
	}
	serviceUsage = topByTotal(serviceUsage, 3)

	return &BulkSummaries{
		ManagedAccounts:   managedAccounts,
		UnmanagedAccounts: unmanagedAccounts,
		AccountService:    accountService,
		Services:          services,
		OwnerService:      ownerService,
		ResourceUsage:     resourceUsage,
		ServiceUsage:      serviceUsage,
	}, nil
}

// OwnerSummary is one owner's personalized expenditure breakdown.
type OwnerSummary struct {
	Owner     string
	Breakdown billing.Summary
}

// BuildOwnerSummaries aggregates managed resources per owner as
// owner -> account -> resource and keeps only owners that resolve to a
// deliverable address.
func BuildOwnerSummaries(managed []*domain.Resource) ([]OwnerSummary, error) {
	summary, err := billing.Rollup([]string{"owner", "account", "resource"}, managed, billing.RollupOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to build owner summaries: %w", err)
	}

	var owners []OwnerSummary
	for _, entry := range summary {
		if !strings.Contains(entry.Key, "@") {
			continue
		}
		owners = append(owners, OwnerSummary{Owner: entry.Key, Breakdown: entry.Children})
	}
	return owners, nil
}

// filterByTotal keeps intermediate entries whose grand total is strictly above
// min dollars per month.
func filterByTotal(summary billing.Summary, min int64) billing.Summary {
	var kept billing.Summary
	for _, entry := range summary {
		total, ok := entry.Children.Lookup(billing.TotalKey)
		if ok && total.Total.Monthly > min {
			kept = append(kept, entry)
		}
	}
	return kept
}

// topByTotal keeps the n intermediate entries with the highest grand totals.
func topByTotal(summary billing.Summary, n int) billing.Summary {
	sorted := make(billing.Summary, len(summary))
	copy(sorted, summary)
	sort.SliceStable(sorted, func(i, j int) bool {
		left, _ := sorted[i].Children.Lookup(billing.TotalKey)
		right, _ := sorted[j].Children.Lookup(billing.TotalKey)
		return left.Total.Monthly > right.Total.Monthly
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
