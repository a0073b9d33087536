package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ResourceKey identifies a billed resource. Line items that carry no resource
// id (taxes, support charges, some data transfer) get a synthetic key so they
// still participate in aggregation without colliding with each other.
type ResourceKey struct {
	id        string
	synthetic bool
}

func KnownKey(id string) ResourceKey {
	return ResourceKey{id: id}
}

func SyntheticKey(id string) ResourceKey {
	return ResourceKey{id: id, synthetic: true}
}

func (k ResourceKey) String() string {
	return k.id
}

func (k ResourceKey) Synthetic() bool {
	return k.synthetic
}

// Resource is one distinct billed resource accumulated across all of its
// billing line items for the report month.
type Resource struct {
	key     ResourceKey
	service string
	account string
	region  string
	owner   string
	usage   map[string]*CostPacket
}

func NewResource(key ResourceKey, service, account, region string) *Resource {
	return &Resource{
		key:     key,
		service: service,
		account: account,
		region:  region,
		usage:   map[string]*CostPacket{},
	}
}

func (r *Resource) Key() ResourceKey {
	return r.key
}

func (r *Resource) Service() string {
	return r.service
}

func (r *Resource) Account() string {
	return r.account
}

func (r *Resource) Region() string {
	return r.region
}

// Owner returns the resolved owner tag value, empty when the resource never
// carried one.
func (r *Resource) Owner() string {
	return r.owner
}

// SetOwnerTag records the owner tag. The first non-empty value wins; later
// rows never overwrite it.
func (r *Resource) SetOwnerTag(value string) {
	if r.owner == "" && value != "" {
		r.owner = value
	}
}

// AddUsage accumulates one line item's cost under its usage type.
func (r *Resource) AddUsage(usageType string, daily, monthly decimal.Decimal) error {
	packet, ok := r.usage[usageType]
	if !ok {
		packet = ZeroCostPacket()
		r.usage[usageType] = packet
	}
	if err := packet.AddDaily(daily); err != nil {
		return err
	}
	return packet.AddMonthly(monthly)
}

// UsageTypes returns the usage type names in sorted order so that iteration
// over a resource is deterministic.
func (r *Resource) UsageTypes() []string {
	names := make([]string, 0, len(r.usage))
	for name := range r.usage {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Resource) Usage(usageType string) (*CostPacket, bool) {
	packet, ok := r.usage[usageType]
	return packet, ok
}

// WithOnlyUsageType returns a derived copy of the resource that carries a
// single usage type. Used by the usage-type grouping view, where one resource
// appears once per usage type. The copy owns its accumulators.
func (r *Resource) WithOnlyUsageType(usageType string) *Resource {
	derived := NewResource(r.key, r.service, r.account, r.region)
	derived.owner = r.owner
	if packet, ok := r.usage[usageType]; ok {
		derived.usage[usageType] = packet.Clone()
	}
	return derived
}

func (r *Resource) DailyTotal() decimal.Decimal {
	total := decimal.Zero
	for _, packet := range r.usage {
		total = total.Add(packet.Daily())
	}
	return total
}

func (r *Resource) MonthlyTotal() decimal.Decimal {
	total := decimal.Zero
	for _, packet := range r.usage {
		total = total.Add(packet.Monthly())
	}
	return total
}
