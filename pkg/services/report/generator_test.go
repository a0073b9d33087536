package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/cloud-billing-report/pkg/models/store"
	"github.com/de-tools/cloud-billing-report/pkg/services/billing"
	"github.com/de-tools/cloud-billing-report/pkg/services/config"
	"github.com/de-tools/cloud-billing-report/pkg/store/audit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBillingSource struct {
	rows []billing.Row
	err  error
}

func (f *fakeBillingSource) FetchBillingRows(_ context.Context, _ time.Time) ([]billing.Row, error) {
	return f.rows, f.err
}

type fakeAuditSource struct {
	resources []store.AuditedResource
	err       error
}

func (f *fakeAuditSource) FetchAudit(_ context.Context, _ audit.Scope) ([]store.AuditedResource, error) {
	return f.resources, f.err
}

type fakeWarehouse struct {
	costs []store.ProjectServiceCost
	err   error
}

func (f *fakeWarehouse) GetProjectServiceCosts(_ context.Context, _ time.Time) ([]store.ProjectServiceCost, error) {
	return f.costs, f.err
}

func awsTestConfig() config.AWS {
	return config.AWS{
		Accounts:         map[string]string{"111": "research", "999": "sandbox"},
		From:             "billing@ucsc.edu",
		Recipients:       []string{"ops@ucsc.edu"},
		WarningThreshold: 200,
		Compliance: config.Compliance{
			Accounts: map[string]string{"111": "research"},
			RoleARNs: map[string]string{"111": "arn:role-111"},
			Regions:  []string{"us-east-1"},
		},
	}
}

func billingRow(resourceID, account, cost, owner string) billing.Row {
	row := billing.Row{
		"lineItem/UsageAccountId": account,
		"product/ProductName":     "Amazon Elastic Compute Cloud",
		"product/usagetype":       "BoxUsage:t3.micro",
		"lineItem/LineItemType":   "Usage",
		"lineItem/BlendedCost":    cost,
		"lineItem/ResourceId":     resourceID,
		"product/region":          "us-east-1",
		"lineItem/UsageStartDate": "2025-03-15T00:00:00Z",
		"lineItem/UsageEndDate":   "2025-03-15T01:00:00Z",
	}
	if owner != "" {
		row["resourceTags/user:Owner"] = owner
	}
	return row
}

func TestAWSGenerator_Run(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "emails")
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	billingSource := &fakeBillingSource{rows: []billing.Row{
		billingRow("i-1", "111", "50.00", "alice@ucsc.edu"),
		billingRow("i-2", "999", "7.00", ""),
	}}
	auditSource := &fakeAuditSource{resources: []store.AuditedResource{
		{
			ARN:          "arn:aws:ec2:us-east-1:111:instance/i-1",
			ResourceType: "AWS::EC2::Instance",
			AccountID:    "111",
			Region:       "us-east-1",
			Tags:         map[string]string{"Owner": "alice@ucsc.edu"},
		},
	}}

	generator, err := NewAWSGenerator(awsTestConfig(), billingSource, auditSource, outDir)
	require.NoError(t, err)
	require.NoError(t, generator.Run(context.Background(), day))

	bulk, err := os.ReadFile(filepath.Join(outDir, bulkReportFile))
	require.NoError(t, err)
	assert.Contains(t, string(bulk), "Subject: AWS Report for March 15, 2025")
	assert.Contains(t, string(bulk), "To: ops@ucsc.edu")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	var ownerFiles []string
	for _, entry := range entries {
		if entry.Name() != bulkReportFile {
			ownerFiles = append(ownerFiles, entry.Name())
		}
	}
	require.Len(t, ownerFiles, 1)
	assert.True(t, strings.HasPrefix(ownerFiles[0], "alice-"))
	assert.True(t, strings.HasSuffix(ownerFiles[0], ".eml"))

	personal, err := os.ReadFile(filepath.Join(outDir, ownerFiles[0]))
	require.NoError(t, err)
	assert.Contains(t, string(personal), "To: alice@ucsc.edu")
}

func TestAWSGenerator_Run_AuditFailureWritesNothing(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "emails")

	generator, err := NewAWSGenerator(
		awsTestConfig(),
		&fakeBillingSource{rows: []billing.Row{billingRow("i-1", "111", "50.00", "")}},
		&fakeAuditSource{err: assert.AnError},
		outDir,
	)
	require.NoError(t, err)

	err = generator.Run(context.Background(), time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch compliance audit")

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGCPGenerator_Run(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "emails")
	day := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	usage := &fakeWarehouse{costs: []store.ProjectServiceCost{
		{
			Project:   "genomics",
			Service:   "Compute Engine",
			MonthCost: decimal.RequireFromString("120.50"),
			DayCost:   decimal.RequireFromString("4.10"),
		},
	}}

	generator, err := NewGCPGenerator(config.GCP{
		From:             "billing@ucsc.edu",
		Recipients:       []string{"ops@ucsc.edu"},
		WarningThreshold: 200,
	}, usage, outDir)
	require.NoError(t, err)
	require.NoError(t, generator.Run(context.Background(), day))

	msg, err := os.ReadFile(filepath.Join(outDir, gcpReportFile))
	require.NoError(t, err)
	assert.Contains(t, string(msg), "Subject: GCP Report for March 15, 2025")
	assert.Contains(t, string(msg), "genomics")
}

func TestOwnerFileName(t *testing.T) {
	name := ownerFileName("alice@ucsc.edu")
	assert.True(t, strings.HasPrefix(name, "alice-"))
	assert.True(t, strings.HasSuffix(name, ".eml"))
	assert.NotEqual(t, name, ownerFileName("alice@ucsc.edu"))
}
