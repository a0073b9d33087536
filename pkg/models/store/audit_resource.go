package store

// AuditedResource is one row returned by the AWS Config resource query for a
// single account and region. Compliance is empty when the rule result is not
// part of the query; the domain layer derives it from tags in that case.
type AuditedResource struct {
	ARN          string
	ResourceType string
	AccountID    string
	Region       string
	Compliance   string
	Tags         map[string]string
}
