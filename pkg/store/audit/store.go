package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/configservice"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/de-tools/cloud-billing-report/pkg/models/store"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// resourceQuery is the AWS Config advanced query run in every account/region.
const resourceQuery = `SELECT resourceId, resourceType, accountId, awsRegion, tags`

// ConfigAPI is the slice of the AWS Config API the store uses.
type ConfigAPI interface {
	SelectResourceConfig(
		ctx context.Context,
		input *configservice.SelectResourceConfigInput,
		opts ...func(*configservice.Options),
	) (*configservice.SelectResourceConfigOutput, error)
}

// ClientFactory builds a Config client scoped to one account role and region.
type ClientFactory func(ctx context.Context, roleARN, region string) (ConfigAPI, error)

// DefaultClientFactory assumes the per-account audit role via STS.
func DefaultClientFactory(base aws.Config) ClientFactory {
	stsClient := sts.NewFromConfig(base)
	return func(_ context.Context, roleARN, region string) (ConfigAPI, error) {
		cfg := base.Copy()
		cfg.Region = region
		cfg.Credentials = aws.NewCredentialsCache(stscreds.NewAssumeRoleProvider(stsClient, roleARN))
		return configservice.NewFromConfig(cfg), nil
	}
}

// Scope is the set of accounts and regions one audit run covers.
type Scope struct {
	// RoleARNs maps account id to the role assumed in that account.
	RoleARNs map[string]string
	Regions  []string
}

type Store struct {
	newClient ClientFactory
	workers   int
}

func NewStore(factory ClientFactory) *Store {
	return &Store{newClient: factory, workers: 4}
}

// FetchAudit queries every account/region pair and returns the merged
// resource list. Workers accumulate into their own slices; the merge happens
// only after every query finished, so reconciliation always sees one immutable
// batch. Any failed query fails the whole audit.
func (s *Store) FetchAudit(ctx context.Context, scope Scope) ([]store.AuditedResource, error) {
	type task struct {
		account string
		region  string
	}

	var tasks []task
	for account := range scope.RoleARNs {
		for _, region := range scope.Regions {
			tasks = append(tasks, task{account: account, region: region})
		}
	}

	results := make([][]store.AuditedResource, len(tasks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			client, err := s.newClient(ctx, scope.RoleARNs[t.account], t.region)
			if err != nil {
				return fmt.Errorf("failed to build audit client for %s/%s: %w", t.account, t.region, err)
			}
			resources, err := s.queryRegion(ctx, client, t.account, t.region)
			if err != nil {
				return fmt.Errorf("audit query failed for %s/%s: %w", t.account, t.region, err)
			}
			results[i] = resources
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []store.AuditedResource
	for _, result := range results {
		merged = append(merged, result...)
	}
	return merged, nil
}

func (s *Store) queryRegion(ctx context.Context, client ConfigAPI, account, region string) ([]store.AuditedResource, error) {
	logger := zerolog.Ctx(ctx)

	var resources []store.AuditedResource
	var nextToken *string
	for {
		out, err := client.SelectResourceConfig(ctx, &configservice.SelectResourceConfigInput{
			Expression: aws.String(resourceQuery),
			NextToken:  nextToken,
		})
		if err != nil {
			return nil, err
		}

		for _, raw := range out.Results {
			resource, err := parseResult(raw)
			if err != nil {
				return nil, err
			}
			resources = append(resources, resource)
		}

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	logger.Debug().
		Str("account", account).
		Str("region", region).
		Int("resources", len(resources)).
		Msg("audit region scanned")
	return resources, nil
}

// configResult is the JSON shape of one advanced-query result.
type configResult struct {
	ResourceID   string `json:"resourceId"`
	ResourceType string `json:"resourceType"`
	AccountID    string `json:"accountId"`
	Region       string `json:"awsRegion"`
	Tags         []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"tags"`
}

func parseResult(raw string) (store.AuditedResource, error) {
	var result configResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return store.AuditedResource{}, fmt.Errorf("failed to parse audit result: %w", err)
	}

	tags := make(map[string]string, len(result.Tags))
	for _, tag := range result.Tags {
		tags[tag.Key] = tag.Value
	}
	return store.AuditedResource{
		ARN:          result.ResourceID,
		ResourceType: result.ResourceType,
		AccountID:    result.AccountID,
		Region:       result.Region,
		Tags:         tags,
	}, nil
}
