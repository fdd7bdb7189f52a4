package domain

import "strings"

// RecognitionRecord is one normalized entry of a recognitions document.
// Every field defaults to empty; StartDate, EndDate and ImageURL are
// optional and an empty value means absent.
type RecognitionRecord struct {
	LDAP        string // may hold a comma-separated list
	Name        string
	Heading     string
	Title       string
	Description string
	StartDate   string // raw DD/MM/YYYY
	EndDate     string // raw DD/MM/YYYY
	ImageURL    string
}

type RecognitionDocument struct {
	Total int
	Data  []RecognitionRecord
}

// PrimaryLDAP returns the first LDAP entry, lower-cased and trimmed.
func (r RecognitionRecord) PrimaryLDAP() string {
	first, _, _ := strings.Cut(r.LDAP, ",")
	return strings.ToLower(strings.TrimSpace(first))
}

func (r RecognitionRecord) HasStartDate() bool { return strings.TrimSpace(r.StartDate) != "" }
func (r RecognitionRecord) HasEndDate() bool   { return strings.TrimSpace(r.EndDate) != "" }
func (r RecognitionRecord) HasImageURL() bool  { return strings.TrimSpace(r.ImageURL) != "" }

type StatsSummary struct {
	Total                int
	Active               int
	ImageURLCount        int
	LongDescriptionCount int
	MissingEndDateCount  int
	InvalidDateCount     int

	ActiveRecords   []RecognitionRecord
	ActiveImageRefs []string
}

// OrgResult is the outcome of processing one organization URL.
type OrgResult struct {
	OrgName      string
	SourceURL    string
	Summary      StatsSummary
	LastModified string // empty when the manifest lookup failed or was disabled
	ArtifactPath string
	Published    bool
	Err          error
}

func (r OrgResult) Succeeded() bool {
	return r.Err == nil && r.ArtifactPath != ""
}
