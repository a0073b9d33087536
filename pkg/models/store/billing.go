package store

import "github.com/shopspring/decimal"

// ProjectServiceCost is one pre-aggregated row from the GCP billing export
// mirror: month-to-date and report-day cost for a (project, service) pair,
// net of credits.
type ProjectServiceCost struct {
	Project   string
	Service   string
	MonthCost decimal.Decimal
	DayCost   decimal.Decimal
}
