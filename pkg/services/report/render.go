package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/de-tools/cloud-billing-report/pkg/models/domain"
	"github.com/de-tools/cloud-billing-report/pkg/services/billing"
	"github.com/de-tools/cloud-billing-report/pkg/services/compliance"
)

//go:embed templates/*.html
var templatesFS embed.FS

// AWSBulkData feeds the bulk report template.
type AWSBulkData struct {
	ReportDate time.Time
	Accounts   map[string]string
	Summaries  *BulkSummaries
	Compliance compliance.Reconciliation
	// ComplianceAccounts is every managed account name in render order.
	ComplianceAccounts []string
}

// AWSIndividualData feeds one owner's personalized report.
type AWSIndividualData struct {
	ReportDate time.Time
	Owner      string
	Breakdown  billing.Summary
	Resources  []domain.ComplianceRecord
}

// GCPData feeds the GCP bulk report template.
type GCPData struct {
	ReportDate     time.Time
	ProjectService billing.Summary
	ProjectTotals  billing.Summary
}

type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates. warningThreshold drives the
// unusual-amount highlighting in daily columns.
func NewRenderer(warningThreshold int64) (*Renderer, error) {
	funcs := sprig.HtmlFuncMap()
	funcs["printAmount"] = printAmount
	funcs["printDiff"] = func(amount int64) template.HTML {
		return printDiff(amount, warningThreshold)
	}
	funcs["ymd"] = func(t time.Time) string { return t.Format("2006/01/02") }
	funcs["ym"] = func(t time.Time) string { return t.Format("2006/01") }

	tmpl, err := template.New("report").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) AWSBulk(data AWSBulkData) (string, error) {
	return r.render("aws_report.html", data)
}

func (r *Renderer) AWSIndividual(data AWSIndividualData) (string, error) {
	return r.render("aws_individual_report.html", data)
}

func (r *Renderer) GCP(data GCPData) (string, error) {
	return r.render("gcp_report.html", data)
}

func (r *Renderer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// printAmount formats a whole-dollar amount, sign outside the symbol.
func printAmount(amount int64) string {
	if amount < 0 {
		return fmt.Sprintf("-$%d", -amount)
	}
	return fmt.Sprintf("$%d", amount)
}

// printDiff renders a daily amount, highlighting anything above the warning
// threshold or below zero. Zero-dollar days render empty to keep the tables
// scannable.
func printDiff(amount, threshold int64) template.HTML {
	switch {
	case amount > threshold || amount < 0:
		return template.HTML(fmt.Sprintf(`<span class="unusual">%s</span>`, printAmount(amount)))
	case amount == 0:
		return ""
	default:
		return template.HTML(printAmount(amount))
	}
}
