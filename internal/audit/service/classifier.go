package service

import (
	"regexp"
	"strings"

	auditDomain "github.com/keeplegacy/docvault/internal/audit/domain"
)

// Detection patterns for personally identifiable information inside detail
// payloads. These run over file names and string detail fields, not over
// document contents, which are encrypted before the trail ever sees them.
var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d{1,3}[\s.\-]?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	sinPattern   = regexp.MustCompile(`\b\d{3}[\s\-]?\d{3}[\s\-]?\d{3}\b`)
)

// phiMarkers are file name fragments that indicate health information.
var phiMarkers = []string{
	"medical", "health", "diagnosis", "prescription", "patient",
	"clinical", "treatment", "immunization", "lab-result", "lab_result",
}

type complianceClassifier struct{}

// NewComplianceClassifier creates a classifier that derives compliance flags
// from an entry's detail payload and resource classification.
func NewComplianceClassifier() ComplianceClassifier {
	return &complianceClassifier{}
}

// Classify inspects the entry and returns its compliance flags. Every entry
// falls under PIPEDA; entries touching health information additionally fall
// under HIPAA. The returned flags never clear bits already set on the entry.
func (c *complianceClassifier) Classify(entry *auditDomain.AuditLogEntry) auditDomain.ComplianceFlags {
	flags := auditDomain.ComplianceFlags{
		ContainsPII: entry.Flags.ContainsPII,
		ContainsPHI: entry.Flags.ContainsPHI,
	}

	text, classification := detailText(entry.Details)

	if containsPII(text) {
		flags.ContainsPII = true
	}
	if classification == "medical" || containsPHIMarker(text) {
		flags.ContainsPHI = true
		flags.ContainsPII = true
	}

	flags.Jurisdictions = []auditDomain.Jurisdiction{auditDomain.JurisdictionPIPEDA}
	if flags.ContainsPHI {
		flags.Jurisdictions = append(flags.Jurisdictions, auditDomain.JurisdictionHIPAA)
	}

	return flags
}

// detailText collects the free-text fields of a detail payload along with the
// document classification when the payload carries one.
func detailText(details auditDomain.Details) (text, classification string) {
	switch d := details.(type) {
	case auditDomain.UploadDetails:
		return d.FileName, d.Classification
	case auditDomain.DownloadDetails:
		return d.FileName, d.Classification
	case auditDomain.DeleteDetails:
		return d.FileName + " " + d.Reason, ""
	case auditDomain.ArchiveDetails:
		return d.FileName, ""
	case auditDomain.AccessDeniedDetails:
		return d.Reason, ""
	case auditDomain.IntegrityFailureDetails:
		return d.FileName, ""
	default:
		return "", ""
	}
}

func containsPII(text string) bool {
	if text == "" {
		return false
	}
	return emailPattern.MatchString(text) ||
		phonePattern.MatchString(text) ||
		sinPattern.MatchString(text)
}

func containsPHIMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range phiMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
