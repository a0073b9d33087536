package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/de-tools/cloud-billing-report/pkg/models/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store reads the GCP billing export mirror table.
type Store interface {
	GetProjectServiceCosts(ctx context.Context, day time.Time) ([]store.ProjectServiceCost, error)
}

type sqlStore struct {
	db    *sql.DB
	table string
}

func NewStore(db *sql.DB, table string) Store {
	return &sqlStore{db: db, table: table}
}

// GetProjectServiceCosts returns month-to-date and report-day cost per
// (project, service), net of credits, for the invoice month containing day.
func (s *sqlStore) GetProjectServiceCosts(ctx context.Context, day time.Time) ([]store.ProjectServiceCost, error) {
	logger := zerolog.Ctx(ctx)

	query := fmt.Sprintf(`
		SELECT
			project_name,
			service_description,
			SUM(CASE WHEN usage_date <= ? THEN cost + credits ELSE 0 END) AS cost_month,
			SUM(CASE WHEN usage_date = ? THEN cost + credits ELSE 0 END) AS cost_today
		FROM %s
		WHERE invoice_month = ?
		GROUP BY project_name, service_description
		ORDER BY LOWER(project_name) ASC, service_description ASC`, s.table)

	reportDay := day.Format("2006-01-02")
	invoiceMonth := day.Format("200601")

	rows, err := s.db.QueryContext(ctx, query, reportDay, reportDay, invoiceMonth)
	if err != nil {
		return nil, fmt.Errorf("billing export query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close billing export rows")
		}
	}(rows)

	var costs []store.ProjectServiceCost
	for rows.Next() {
		var (
			project, service   string
			monthCost, dayCost string
		)
		if err := rows.Scan(&project, &service, &monthCost, &dayCost); err != nil {
			return nil, err
		}

		month, err := decimal.NewFromString(monthCost)
		if err != nil {
			return nil, fmt.Errorf("failed to parse month cost %q: %w", monthCost, err)
		}
		today, err := decimal.NewFromString(dayCost)
		if err != nil {
			return nil, fmt.Errorf("failed to parse day cost %q: %w", dayCost, err)
		}

		costs = append(costs, store.ProjectServiceCost{
			Project:   project,
			Service:   service,
			MonthCost: month,
			DayCost:   today,
		})
	}
	return costs, rows.Err()
}
