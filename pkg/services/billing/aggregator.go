package billing

import (
	"fmt"
	"time"

	"github.com/de-tools/cloud-billing-report/pkg/models/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// syntheticPrefix marks resource ids synthesized for line items that carry no
// resource id of their own.
const syntheticPrefix = "NA"

// Aggregator folds a month of billing line items into one Resource per
// distinct resource id. Rows whose usage window falls entirely inside the
// report date also count toward the daily cost; every non-skipped row counts
// toward the monthly cost.
type Aggregator struct {
	day         time.Time
	resources   map[string]*domain.Resource
	order       []string
	syntheticID func() string
}

type Option func(*Aggregator)

// WithSyntheticIDGenerator replaces the uuid-based id generator. Tests inject
// a counter here so synthetic keys are stable.
func WithSyntheticIDGenerator(gen func() string) Option {
	return func(a *Aggregator) {
		a.syntheticID = gen
	}
}

// NewAggregator creates an aggregator for the given report date. The time
// component of day is ignored.
func NewAggregator(day time.Time, opts ...Option) *Aggregator {
	a := &Aggregator{
		day:       day.Truncate(24 * time.Hour),
		resources: map[string]*domain.Resource{},
		syntheticID: func() string {
			return uuid.New().String()
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Consume processes the full row sequence. Any malformed row aborts the run;
// no partial aggregate survives an error.
func (a *Aggregator) Consume(rows []Row) error {
	for i, row := range rows {
		if err := a.consume(row); err != nil {
			return fmt.Errorf("failed to aggregate billing row %d: %w", i, err)
		}
	}
	return nil
}

func (a *Aggregator) consume(row Row) error {
	lineItemType, err := row.required(FieldLineItemType)
	if err != nil {
		return err
	}
	if _, skip := skipLineItemTypes[lineItemType]; skip {
		return nil
	}

	account, err := row.required(FieldAccountID)
	if err != nil {
		return err
	}
	service, err := row.required(FieldService)
	if err != nil {
		return err
	}
	usageType, err := row.required(FieldUsageType)
	if err != nil {
		return err
	}
	cost, err := row.cost()
	if err != nil {
		return err
	}
	start, end, err := row.usageWindow()
	if err != nil {
		return err
	}

	key := domain.KnownKey(row[FieldResourceID])
	if key.String() == "" {
		key = domain.SyntheticKey(syntheticPrefix + a.syntheticID())
	}

	resource, ok := a.resources[key.String()]
	if !ok {
		resource = domain.NewResource(key, service, account, row[FieldRegion])
		a.resources[key.String()] = resource
		a.order = append(a.order, key.String())
	}
	resource.SetOwnerTag(row.ownerTag())

	daily := decimal.Zero
	if a.inDailyWindow(start, end) {
		daily = cost
	}
	return resource.AddUsage(usageType, daily, cost)
}

func (a *Aggregator) inDailyWindow(start, end time.Time) bool {
	startDay := start.Truncate(24 * time.Hour)
	endDay := end.Truncate(24 * time.Hour)
	return !startDay.Before(a.day) && !endDay.After(a.day)
}

// Resources returns every aggregated resource in first-seen order.
func (a *Aggregator) Resources() []*domain.Resource {
	resources := make([]*domain.Resource, 0, len(a.order))
	for _, id := range a.order {
		resources = append(resources, a.resources[id])
	}
	return resources
}

// Resource looks up a single aggregated resource by id.
func (a *Aggregator) Resource(id string) (*domain.Resource, bool) {
	resource, ok := a.resources[id]
	return resource, ok
}

// SplitManaged partitions resources into those billed to a managed account
// and everything else.
func SplitManaged(resources []*domain.Resource, managedAccounts map[string]string) (managed, unmanaged []*domain.Resource) {
	for _, resource := range resources {
		if _, ok := managedAccounts[resource.Account()]; ok {
			managed = append(managed, resource)
		} else {
			unmanaged = append(unmanaged, resource)
		}
	}
	return managed, unmanaged
}
