package compliance

import (
	"strings"

	"github.com/de-tools/cloud-billing-report/pkg/models/domain"
)

// DefaultAdminRemap redirects the cluster service account's tag value to the
// operations alias so its resources are not reported to a robot.
var DefaultAdminRemap = map[string]string{
	"cluster-admin@soe.ucsc.edu": "cluster-admin@ucsc.edu",
}

// classification is the outcome of one owner tag value.
type classification struct {
	email  string
	shared bool
}

// rule inspects a tag value and either claims it or passes. Rules run in a
// fixed order; downstream grouping depends on that precedence, so keep the
// order auditable here rather than spread across conditionals.
type rule func(value string) (classification, bool)

// Classifier resolves an owner tag value to a recipient email, a shared
// marker, or nothing (unowned).
type Classifier struct {
	rules []rule
}

func NewClassifier(remap map[string]string) *Classifier {
	return &Classifier{
		rules: []rule{
			remapRule(remap),
			emailRule,
			sharedRule,
		},
	}
}

func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultAdminRemap)
}

// remapRule reassigns fixed administrative tag values to their configured
// fallback address. Runs before the email-shape check so a remapped value
// that looks like an email still lands on the fallback.
func remapRule(remap map[string]string) rule {
	return func(value string) (classification, bool) {
		if fallback, ok := remap[value]; ok {
			return classification{email: fallback}, true
		}
		return classification{}, false
	}
}

// emailRule accepts values shaped like an address: an "@" with a "." somewhere
// after it.
func emailRule(value string) (classification, bool) {
	at := strings.Index(value, "@")
	if at >= 0 && strings.Contains(value[at:], ".") {
		return classification{email: value}, true
	}
	return classification{}, false
}

// sharedRule marks resources owned by a team rather than a person.
func sharedRule(value string) (classification, bool) {
	if strings.Contains(strings.ToLower(value), "shared") {
		return classification{shared: true}, true
	}
	return classification{}, false
}

func (c *Classifier) classify(value string) classification {
	if value == "" {
		return classification{}
	}
	for _, r := range c.rules {
		if result, ok := r(value); ok {
			return result
		}
	}
	return classification{}
}

// ResolveOwnership derives the record's compliance status and its
// email/shared/unowned classification from its tags.
func (c *Classifier) ResolveOwnership(record *domain.ComplianceRecord) {
	record.DeriveStatus()
	result := c.classify(record.OwnerTagValue())
	record.Email = result.email
	record.Shared = result.shared
}
