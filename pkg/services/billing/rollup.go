package billing

import (
	"sort"

	"github.com/de-tools/cloud-billing-report/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// TotalKey is the synthetic entry holding a level's grand total.
const TotalKey = "Total"

// Entry is one group in a Summary. Exactly one of Total/Children is
// meaningful: leaves carry a Total, intermediate entries carry Children.
type Entry struct {
	Key      string
	Total    domain.CostTotal
	Children Summary
}

func (e Entry) Leaf() bool {
	return e.Children == nil
}

// Summary is an ordered aggregation result. Leaf levels are sorted by monthly
// cost descending; intermediate levels keep grouping order.
type Summary []Entry

func (s Summary) Lookup(key string) (Entry, bool) {
	for _, entry := range s {
		if entry.Key == key {
			return entry, true
		}
	}
	return Entry{}, false
}

// RollupOptions control leaf-level behavior only. Threshold filtering and
// total injection never apply at intermediate levels; report templates depend
// on intermediate levels being unfiltered.
type RollupOptions struct {
	// AddTotal appends a synthetic Total entry after sorting and filtering.
	AddTotal bool
	// Threshold drops leaf entries whose monthly cost is strictly below it.
	Threshold int64
}

// Rollup recursively partitions resources along the named dimensions and
// collapses each final group into a CostTotal. Unknown dimension names fail
// before any aggregation work begins.
func Rollup(dimensions []string, resources []*domain.Resource, opts RollupOptions) (Summary, error) {
	dims := make([]Dimension, len(dimensions))
	for i, name := range dimensions {
		d, err := ParseDimension(name)
		if err != nil {
			return nil, err
		}
		dims[i] = d
	}
	return rollup(dims, resources, opts), nil
}

func rollup(dims []Dimension, resources []*domain.Resource, opts RollupOptions) Summary {
	grouping := GroupBy(dims[0], resources)

	if len(dims) == 1 {
		return collapse(grouping, opts)
	}

	summary := make(Summary, 0, len(grouping.Keys()))
	for _, key := range grouping.Keys() {
		// Each branch aggregates its own slice; siblings share nothing.
		summary = append(summary, Entry{
			Key:      key,
			Children: rollup(dims[1:], grouping.Group(key), opts),
		})
	}
	return summary
}

func collapse(grouping *Grouping, opts RollupOptions) Summary {
	var grandDaily, grandMonthly int64

	entries := make(Summary, 0, len(grouping.Keys()))
	for _, key := range grouping.Keys() {
		total := domain.TotalOf(sumCosts(grouping.Group(key)))

		// Grand totals include entries the threshold later drops.
		grandDaily += total.Daily
		grandMonthly += total.Monthly

		if total.Monthly < opts.Threshold {
			continue
		}
		entries = append(entries, Entry{Key: key, Total: total})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total.Monthly > entries[j].Total.Monthly
	})

	if opts.AddTotal {
		entries = append(entries, Entry{
			Key:   TotalKey,
			Total: domain.CostTotal{Daily: grandDaily, Monthly: grandMonthly},
		})
	}
	return entries
}

func sumCosts(resources []*domain.Resource) (daily, monthly decimal.Decimal) {
	daily, monthly = decimal.Zero, decimal.Zero
	for _, r := range resources {
		daily = daily.Add(r.DailyTotal())
		monthly = monthly.Add(r.MonthlyTotal())
	}
	return daily, monthly
}
