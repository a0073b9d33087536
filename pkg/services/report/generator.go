package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/de-tools/cloud-billing-report/pkg/adapters"
	"github.com/de-tools/cloud-billing-report/pkg/models/domain"
	"github.com/de-tools/cloud-billing-report/pkg/models/store"
	"github.com/de-tools/cloud-billing-report/pkg/services/billing"
	"github.com/de-tools/cloud-billing-report/pkg/services/compliance"
	"github.com/de-tools/cloud-billing-report/pkg/services/config"
	"github.com/de-tools/cloud-billing-report/pkg/store/audit"
	"github.com/de-tools/cloud-billing-report/pkg/store/warehouse"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BillingSource provides the month's billing line items for a report date.
type BillingSource interface {
	FetchBillingRows(ctx context.Context, day time.Time) ([]billing.Row, error)
}

// AuditSource provides the merged tagging-audit batch.
type AuditSource interface {
	FetchAudit(ctx context.Context, scope audit.Scope) ([]store.AuditedResource, error)
}

const bulkReportFile = "awsReport.eml"
const gcpReportFile = "gcpReport.eml"

// AWSGenerator runs the full AWS pipeline: fetch, aggregate, reconcile,
// render, write.
type AWSGenerator struct {
	cfg      config.AWS
	billing  BillingSource
	audit    AuditSource
	renderer *Renderer
	outDir   string
}

func NewAWSGenerator(cfg config.AWS, billingSource BillingSource, auditSource AuditSource, outDir string) (*AWSGenerator, error) {
	renderer, err := NewRenderer(cfg.WarningThreshold)
	if err != nil {
		return nil, err
	}
	return &AWSGenerator{
		cfg:      cfg,
		billing:  billingSource,
		audit:    auditSource,
		renderer: renderer,
		outDir:   outDir,
	}, nil
}

// Run generates the bulk report and one personalized report per deliverable
// owner for the given date. Nothing is written unless every aggregation pass
// succeeded.
func (g *AWSGenerator) Run(ctx context.Context, day time.Time) error {
	logger := zerolog.Ctx(ctx)

	rows, err := g.billing.FetchBillingRows(ctx, day)
	if err != nil {
		return fmt.Errorf("failed to fetch billing rows: %w", err)
	}

	aggregator := billing.NewAggregator(day)
	if err := aggregator.Consume(rows); err != nil {
		return err
	}

	all := aggregator.Resources()
	managed, unmanaged := billing.SplitManaged(all, g.cfg.Compliance.Accounts)
	logger.Info().
		Int("resources", len(all)).
		Int("managed", len(managed)).
		Msg("billing rows aggregated")

	summaries, err := BuildBulkSummaries(all, managed, unmanaged)
	if err != nil {
		return err
	}

	reconciliation, err := g.reconcileAudit(ctx)
	if err != nil {
		return err
	}

	owners, err := BuildOwnerSummaries(managed)
	if err != nil {
		return err
	}

	body, err := g.renderer.AWSBulk(AWSBulkData{
		ReportDate:         day,
		Accounts:           g.cfg.Accounts,
		Summaries:          summaries,
		Compliance:         reconciliation,
		ComplianceAccounts: sortedAccountNames(g.cfg.Compliance.Accounts),
	})
	if err != nil {
		return err
	}
	if err := g.writeEmail(bulkReportFile, "aws", day, g.cfg.Recipients, body); err != nil {
		return err
	}

	for _, owner := range owners {
		body, err := g.renderer.AWSIndividual(AWSIndividualData{
			ReportDate: day,
			Owner:      owner.Owner,
			Breakdown:  owner.Breakdown,
			Resources:  reconciliation.OwnerResources[owner.Owner],
		})
		if err != nil {
			return err
		}
		name := ownerFileName(owner.Owner)
		if err := g.writeEmail(name, "aws", day, []string{owner.Owner}, body); err != nil {
			return err
		}
	}

	logger.Info().Int("personalized", len(owners)).Msg("aws report written")
	return nil
}

func (g *AWSGenerator) reconcileAudit(ctx context.Context) (compliance.Reconciliation, error) {
	resources, err := g.audit.FetchAudit(ctx, audit.Scope{
		RoleARNs: g.cfg.Compliance.RoleARNs,
		Regions:  g.cfg.Compliance.Regions,
	})
	if err != nil {
		return compliance.Reconciliation{}, fmt.Errorf("failed to fetch compliance audit: %w", err)
	}

	classifier := compliance.NewDefaultClassifier()
	records := make([]domain.ComplianceRecord, 0, len(resources))
	for _, resource := range resources {
		record := adapters.MapStoreAuditedResourceToDomainComplianceRecord(resource, g.cfg.Accounts)
		classifier.ResolveOwnership(&record)
		records = append(records, record)
	}
	return compliance.Reconcile(records, g.cfg.Compliance.Accounts), nil
}

func (g *AWSGenerator) writeEmail(name, platform string, day time.Time, to []string, body string) error {
	email := NewReportEmail(platform, day, g.cfg.From, to, body)
	return writeEmailFile(g.outDir, name, email)
}

// GCPGenerator runs the GCP pipeline off the billing export mirror.
type GCPGenerator struct {
	cfg      config.GCP
	usage    warehouse.Store
	renderer *Renderer
	outDir   string
}

func NewGCPGenerator(cfg config.GCP, usage warehouse.Store, outDir string) (*GCPGenerator, error) {
	renderer, err := NewRenderer(cfg.WarningThreshold)
	if err != nil {
		return nil, err
	}
	return &GCPGenerator{cfg: cfg, usage: usage, renderer: renderer, outDir: outDir}, nil
}

func (g *GCPGenerator) Run(ctx context.Context, day time.Time) error {
	logger := zerolog.Ctx(ctx)

	rows, err := g.usage.GetProjectServiceCosts(ctx, day)
	if err != nil {
		return fmt.Errorf("failed to fetch project costs: %w", err)
	}

	usage := billing.BuildProjectUsage(rows)
	logger.Info().Int("buckets", len(usage)).Msg("project usage loaded")

	body, err := g.renderer.GCP(GCPData{
		ReportDate:     day,
		ProjectService: billing.SummarizeProjects(usage),
		ProjectTotals:  billing.SummarizeProjectTotals(usage),
	})
	if err != nil {
		return err
	}

	email := NewReportEmail("gcp", day, g.cfg.From, g.cfg.Recipients, body)
	if err := writeEmailFile(g.outDir, gcpReportFile, email); err != nil {
		return err
	}

	logger.Info().Msg("gcp report written")
	return nil
}

func writeEmailFile(dir, name string, email Email) error {
	message, err := email.String()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(message), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ownerFileName keeps one file per owner per run without clobbering earlier
// runs kept in the same directory.
func ownerFileName(owner string) string {
	local := owner
	if at := strings.Index(owner, "@"); at > 0 {
		local = owner[:at]
	}
	return local + "-" + uuid.New().String() + ".eml"
}

func sortedAccountNames(accounts map[string]string) []string {
	names := make([]string, 0, len(accounts))
	for _, name := range accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
