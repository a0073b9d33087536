package domain

// Tag keys recognized on audited resources.
const (
	TagOwner              = "Owner"
	TagOwnerLower         = "owner"
	TagNonCompliantMarker = "noncompliant-maid-service"
)

// OwnerTagKeys is the recognition order for owner tags. First non-empty wins,
// so a resource tagged with both "Owner" and "owner" resolves deterministically.
var OwnerTagKeys = []string{TagOwner, TagOwnerLower}

type ComplianceStatus string

const (
	Compliant    ComplianceStatus = "COMPLIANT"
	NonCompliant ComplianceStatus = "NON_COMPLIANT"
)

// ComplianceRecord is one resource returned by the tagging audit. It is never
// merged with a billing Resource; the two describe the same infrastructure
// from different key spaces (audit ARN vs billing resource id) and are only
// reported side by side.
type ComplianceRecord struct {
	ResourceID   string
	ResourceType string
	AccountID    string
	AccountName  string
	Region       string
	Status       ComplianceStatus
	Tags         map[string]string

	// Derived by compliance.ResolveOwnership.
	Email  string
	Shared bool
}

// DeriveStatus fills in Status when the audit source reports raw tags instead
// of an explicit verdict: the presence of the non-compliance marker tag is the
// verdict.
func (r *ComplianceRecord) DeriveStatus() {
	if r.Status != "" {
		return
	}
	if _, marked := r.Tags[TagNonCompliantMarker]; marked {
		r.Status = NonCompliant
	} else {
		r.Status = Compliant
	}
}

// OwnerTagValue returns the first non-empty recognized owner tag value.
func (r *ComplianceRecord) OwnerTagValue() string {
	for _, key := range OwnerTagKeys {
		if value := r.Tags[key]; value != "" {
			return value
		}
	}
	return ""
}
