package stats

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"recogstats/internal/domain"

	"github.com/samber/lo"
)

const (
	MeasureWords = "words"
	MeasureChars = "chars"

	DefaultDescriptionThreshold = 50
)

type Options struct {
	DescriptionThreshold int
	DescriptionMeasure   string // "words" (default) or "chars"
	ImageURLTemplate     string // fallback image url, %s is the LDAP
	BaseURL              string // resolves relative Image URLs
	Location             *time.Location
}

// Summarize computes the per-organization counts. It has no side effects;
// records with unparsable dates are counted in InvalidDateCount and
// reported in the returned errors.
func Summarize(doc domain.RecognitionDocument, now time.Time, opts Options) (domain.StatsSummary, []error) {
	if opts.DescriptionThreshold <= 0 {
		opts.DescriptionThreshold = DefaultDescriptionThreshold
	}
	today := domain.Today(now, opts.Location)

	summary := domain.StatsSummary{Total: doc.Total}
	var problems []error
	for i, rec := range doc.Data {
		active, err := rec.ActiveOn(today)
		if err != nil {
			summary.InvalidDateCount++
			problems = append(problems, fmt.Errorf("record %d (%s): %w", i, rec.PrimaryLDAP(), err))
			continue
		}
		if active {
			summary.ActiveRecords = append(summary.ActiveRecords, rec)
		}
	}
	summary.Active = len(summary.ActiveRecords)

	summary.ImageURLCount = lo.CountBy(doc.Data, domain.RecognitionRecord.HasImageURL)
	summary.LongDescriptionCount = lo.CountBy(doc.Data, func(rec domain.RecognitionRecord) bool {
		return IsLongDescription(rec.Description, opts.DescriptionThreshold, opts.DescriptionMeasure)
	})
	summary.MissingEndDateCount = lo.CountBy(doc.Data, func(rec domain.RecognitionRecord) bool {
		return !rec.HasEndDate()
	})
	summary.ActiveImageRefs = lo.FilterMap(summary.ActiveRecords, func(rec domain.RecognitionRecord, _ int) (string, bool) {
		ref := ImageRef(rec, opts.ImageURLTemplate, opts.BaseURL)
		return ref, ref != ""
	})
	return summary, problems
}

// IsLongDescription reports whether desc strictly exceeds threshold words
// (whitespace separated) or characters.
func IsLongDescription(desc string, threshold int, measure string) bool {
	if measure == MeasureChars {
		return utf8.RuneCountInString(desc) > threshold
	}
	return len(strings.Fields(desc)) > threshold
}

// ImageRef returns the record's Image URL, resolved against baseURL when
// relative, or the template filled with the record's primary LDAP. Empty
// when the record has neither.
func ImageRef(rec domain.RecognitionRecord, template, baseURL string) string {
	if rec.HasImageURL() {
		raw := strings.TrimSpace(rec.ImageURL)
		ref, err := url.Parse(raw)
		if err != nil || ref.IsAbs() || baseURL == "" {
			return raw
		}
		base, err := url.Parse(baseURL)
		if err != nil {
			return raw
		}
		return base.ResolveReference(ref).String()
	}
	ldap := rec.PrimaryLDAP()
	if ldap == "" || template == "" {
		return ""
	}
	return fmt.Sprintf(template, url.PathEscape(ldap))
}
