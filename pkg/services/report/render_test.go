package report

import (
	"testing"
	"time"

	"github.com/de-tools/cloud-billing-report/pkg/models/domain"
	"github.com/de-tools/cloud-billing-report/pkg/services/billing"
	"github.com/de-tools/cloud-billing-report/pkg/services/compliance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var renderDate = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

func TestRenderer_AWSBulk(t *testing.T) {
	renderer, err := NewRenderer(200)
	require.NoError(t, err)

	body, err := renderer.AWSBulk(AWSBulkData{
		ReportDate: renderDate,
		Accounts:   map[string]string{"111": "research"},
		Summaries: &BulkSummaries{
			ManagedAccounts: billing.Summary{
				{Key: "111", Total: domain.CostTotal{Daily: 12, Monthly: 340}},
			},
			UnmanagedAccounts: billing.Summary{
				{Key: "999", Total: domain.CostTotal{Daily: 0, Monthly: 7}},
			},
			AccountService: billing.Summary{
				{Key: "111", Children: billing.Summary{
					{Key: "EC2", Total: domain.CostTotal{Daily: 12, Monthly: 340}},
					{Key: billing.TotalKey, Total: domain.CostTotal{Daily: 12, Monthly: 340}},
				}},
			},
		},
		Compliance: compliance.Reconciliation{
			NonCompliantByAccount: map[string][]domain.ComplianceRecord{
				"research": {
					{ResourceID: "i-untagged", ResourceType: "AWS::EC2::Instance", Region: "us-east-1"},
				},
				"teaching": {},
			},
		},
		ComplianceAccounts: []string{"research", "teaching"},
	})
	require.NoError(t, err)

	// Account ids resolve to display names where known.
	assert.Contains(t, body, "<td>research</td>")
	assert.Contains(t, body, "<td>999</td>")
	assert.Contains(t, body, "AWS costs through 2025/03/15")
	assert.Contains(t, body, "$340")
	assert.Contains(t, body, `class="total"`)

	// Zero-findings accounts still get a row in the compliance summary.
	assert.Contains(t, body, "<td>teaching</td>")
	assert.Contains(t, body, "i-untagged")
}

func TestRenderer_AWSIndividual(t *testing.T) {
	renderer, err := NewRenderer(200)
	require.NoError(t, err)

	body, err := renderer.AWSIndividual(AWSIndividualData{
		ReportDate: renderDate,
		Owner:      "alice@ucsc.edu",
		Breakdown: billing.Summary{
			{Key: "111", Children: billing.Summary{
				{Key: "i-1", Total: domain.CostTotal{Daily: 2, Monthly: 50}},
			}},
		},
		Resources: []domain.ComplianceRecord{
			{ResourceID: "arn:aws:s3:::bucket", ResourceType: "AWS::S3::Bucket", AccountName: "research", Region: "us-east-1"},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Owner=alice@ucsc.edu")
	assert.Contains(t, body, "Account 111")
	assert.Contains(t, body, "$50")
	assert.Contains(t, body, "arn:aws:s3:::bucket")
}

func TestRenderer_AWSIndividual_NoAuditSection(t *testing.T) {
	renderer, err := NewRenderer(200)
	require.NoError(t, err)

	body, err := renderer.AWSIndividual(AWSIndividualData{
		ReportDate: renderDate,
		Owner:      "alice@ucsc.edu",
	})
	require.NoError(t, err)

	assert.NotContains(t, body, "Your audited resources")
}

func TestRenderer_GCP(t *testing.T) {
	renderer, err := NewRenderer(200)
	require.NoError(t, err)

	body, err := renderer.GCP(GCPData{
		ReportDate: renderDate,
		ProjectTotals: billing.Summary{
			{Key: "genomics", Total: domain.CostTotal{Daily: 4, Monthly: 150}},
		},
		ProjectService: billing.Summary{
			{Key: "genomics", Children: billing.Summary{
				{Key: "Compute Engine", Total: domain.CostTotal{Daily: 4, Monthly: 120}},
			}},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, body, "GCP costs through 2025/03/15")
	assert.Contains(t, body, "genomics")
	assert.Contains(t, body, "Compute Engine")
	assert.Contains(t, body, "$150")
}

func TestPrintAmount(t *testing.T) {
	assert.Equal(t, "$5", printAmount(5))
	assert.Equal(t, "$0", printAmount(0))
	assert.Equal(t, "-$3", printAmount(-3))
}

func TestPrintDiff(t *testing.T) {
	assert.Equal(t, "$150", string(printDiff(150, 200)))
	assert.Equal(t, "", string(printDiff(0, 200)))
	assert.Equal(t, `<span class="unusual">$201</span>`, string(printDiff(201, 200)))
	assert.Equal(t, `<span class="unusual">-$1</span>`, string(printDiff(-1, 200)))
}
