package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one Cost & Usage Report line item, keyed by the CUR column names.
type Row map[string]string

// CUR columns consumed by the aggregator.
const (
	FieldAccountID    = "lineItem/UsageAccountId"
	FieldService      = "product/ProductName"
	FieldUsageType    = "product/usagetype"
	FieldLineItemType = "lineItem/LineItemType"
	FieldCost         = "lineItem/BlendedCost"
	FieldResourceID   = "lineItem/ResourceId"
	FieldRegion       = "product/region"
	FieldUsageStart   = "lineItem/UsageStartDate"
	FieldUsageEnd     = "lineItem/UsageEndDate"
)

// OwnerTagFields is the recognition order for the CUR owner tag columns.
var OwnerTagFields = []string{
	"resourceTags/user:Owner",
	"resourceTags/user:owner",
}

// Line item types that never contribute cost.
var skipLineItemTypes = map[string]struct{}{
	"credit":              {},
	"refund":              {},
	"SavingsPlanNegation": {},
}

const usageTimeLayout = "2006-01-02T15:04:05Z"

func (r Row) required(field string) (string, error) {
	value, ok := r[field]
	if !ok {
		return "", fmt.Errorf("missing required field %q", field)
	}
	return value, nil
}

func (r Row) cost() (decimal.Decimal, error) {
	raw, err := r.required(FieldCost)
	if err != nil {
		return decimal.Zero, err
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse cost %q: %w", raw, err)
	}
	return amount, nil
}

func (r Row) usageWindow() (start, end time.Time, err error) {
	rawStart, err := r.required(FieldUsageStart)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	rawEnd, err := r.required(FieldUsageEnd)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err = time.Parse(usageTimeLayout, rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse usage start %q: %w", rawStart, err)
	}
	end, err = time.Parse(usageTimeLayout, rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse usage end %q: %w", rawEnd, err)
	}
	return start, end, nil
}

func (r Row) ownerTag() string {
	for _, field := range OwnerTagFields {
		if value := r[field]; value != "" {
			return value
		}
	}
	return ""
}
