package billing

import (
	"fmt"

	"github.com/de-tools/cloud-billing-report/pkg/models/domain"
)

// UntaggedKey is the bucket for resources with no resolved owner.
const UntaggedKey = "(untagged)"

// Dimension is a closed set of grouping axes. Aggregation orders arrive as
// strings from configuration and are validated up front via ParseDimension.
type Dimension int

const (
	ByAccount Dimension = iota
	ByService
	ByOwner
	ByResource
	ByUsageType
)

var dimensionNames = map[string]Dimension{
	"account":  ByAccount,
	"service":  ByService,
	"owner":    ByOwner,
	"resource": ByResource,
	"usage":    ByUsageType,
}

func ParseDimension(name string) (Dimension, error) {
	d, ok := dimensionNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown aggregation dimension %q", name)
	}
	return d, nil
}

func (d Dimension) String() string {
	switch d {
	case ByAccount:
		return "account"
	case ByService:
		return "service"
	case ByOwner:
		return "owner"
	case ByResource:
		return "resource"
	case ByUsageType:
		return "usage"
	}
	return "unknown"
}

// Grouping is an ordered partition of a resource collection. Keys keep
// first-seen order, which downstream sorting uses as the stable tie-break.
type Grouping struct {
	keys   []string
	groups map[string][]*domain.Resource
}

func newGrouping() *Grouping {
	return &Grouping{groups: map[string][]*domain.Resource{}}
}

func (g *Grouping) add(key string, r *domain.Resource) {
	if _, ok := g.groups[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.groups[key] = append(g.groups[key], r)
}

func (g *Grouping) Keys() []string {
	return g.keys
}

func (g *Grouping) Group(key string) []*domain.Resource {
	return g.groups[key]
}

// GroupBy partitions resources along the given dimension. It never mutates
// its input; the usage-type view hands out derived single-usage-type copies
// since one resource can appear under many usage types.
func GroupBy(d Dimension, resources []*domain.Resource) *Grouping {
	g := newGrouping()
	switch d {
	case ByAccount:
		for _, r := range resources {
			g.add(r.Account(), r)
		}
	case ByService:
		for _, r := range resources {
			g.add(r.Service(), r)
		}
	case ByOwner:
		for _, r := range resources {
			owner := r.Owner()
			if owner == "" {
				owner = UntaggedKey
			}
			g.add(owner, r)
		}
	case ByResource:
		for _, r := range resources {
			g.add(r.Key().String(), r)
		}
	case ByUsageType:
		for _, r := range resources {
			for _, usageType := range r.UsageTypes() {
				g.add(usageType, r.WithOnlyUsageType(usageType))
			}
		}
	}
	return g
}
